package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry builds a minimal registry for testing.
func testRegistry() *Registry {
	r := NewRegistry()
	r.Register(&IndexSchema{
		Name:      "users",
		Aliases:   []string{"用户"},
		TimeField: "created_at",
		Fields: map[string]*FieldMeta{
			"age":        {Type: FieldInt, Aliases: []string{"年龄"}},
			"city":       {Type: FieldKeyword, Aliases: []string{"城市"}},
			"created_at": {Type: FieldTime, Aliases: []string{"创建时间"}},
			"name":       {Column: "full_name", Type: FieldString, Aliases: []string{"姓名"}},
		},
		FieldOrder: []string{"name", "age"},
	})
	return r
}

func TestRegistry_Index(t *testing.T) {
	r := testRegistry()

	for _, hint := range []string{"users", "用户", "USERS"} {
		is := r.Index(hint)
		require.NotNil(t, is, hint)
		assert.Equal(t, "users", is.Name)
		assert.Equal(t, "users", is.Table)
	}
	assert.Nil(t, r.Index("orders"))
	assert.Equal(t, []string{"users"}, r.IndexNames())
}

func TestRegistry_FieldOrder(t *testing.T) {
	is := testRegistry().Index("users")
	assert.Equal(t, []string{"name", "age", "city", "created_at"}, is.FieldOrder)
	assert.Equal(t, "age", is.Fields["age"].Name)
}

func TestIndexSchema_Field(t *testing.T) {
	is := testRegistry().Index("users")

	tests := []struct {
		hint   string
		name   string
		column string
	}{
		{"age", "age", "age"},
		{"年龄", "age", "age"},
		{"姓名", "name", "full_name"},
		{"full_name", "name", "full_name"},
		{"City", "city", "city"},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			f := is.Field(tt.hint)
			require.NotNil(t, f)
			assert.Equal(t, tt.name, f.Name)
			assert.Equal(t, tt.column, f.Column)
		})
	}
	assert.Nil(t, is.Field("薪水"))
}

func TestRegistry_Words(t *testing.T) {
	words := testRegistry().Words()
	assert.Contains(t, words, "users")
	assert.Contains(t, words, "用户")
	assert.Contains(t, words, "年龄")
	assert.Contains(t, words, "created_at")
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry
	assert.Nil(t, r.Index("users"))
	assert.Empty(t, r.IndexNames())
	assert.Empty(t, r.Words())
}

func TestFieldType(t *testing.T) {
	assert.True(t, FieldInt.Comparable())
	assert.True(t, FieldTime.Comparable())
	assert.False(t, FieldKeyword.Comparable())
	assert.Equal(t, "time", FieldTime.String())

	ft, ok := ParseFieldType("Date")
	assert.True(t, ok)
	assert.Equal(t, FieldTime, ft)
	_, ok = ParseFieldType("geo_point")
	assert.False(t, ok)
}

func TestParse_CUE(t *testing.T) {
	src := `
indexes: users: {
	aliases: ["用户", "用户表"]
	time_field: "created_at"
	fields: {
		name: aliases: ["姓名"]
		age: {type: "int", aliases: ["年龄"]}
		created_at: {type: "time", column: "created", aliases: ["创建时间"]}
	}
}
indexes: orders: fields: amount: type: "float"
`
	r, err := Parse([]byte(src), "schema.cue")
	require.NoError(t, err)

	assert.Equal(t, []string{"users", "orders"}, r.IndexNames())
	users := r.Index("用户表")
	require.NotNil(t, users)
	assert.Equal(t, []string{"name", "age", "created_at"}, users.FieldOrder)
	assert.Equal(t, FieldString, users.Fields["name"].Type)
	assert.Equal(t, "created", users.Field("创建时间").Column)
	assert.Equal(t, FieldFloat, r.Index("orders").Fields["amount"].Type)
}

func TestParse_YAML(t *testing.T) {
	src := `
indexes:
  logs:
    time_field: ts
    fields:
      level:
        type: keyword
        aliases: [级别]
      ts:
        type: time
`
	r, err := Parse([]byte(src), "schema.yaml")
	require.NoError(t, err)
	logs := r.Index("logs")
	require.NotNil(t, logs)
	assert.Equal(t, "ts", logs.TimeField)
	assert.Equal(t, FieldKeyword, logs.Field("级别").Type)
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`indexes: users: fields: age: type: "integer"`), "bad.cue")
	assert.Error(t, err)

	_, err = Parse([]byte(`tables: {}`), "bad.cue")
	assert.Error(t, err)
}
