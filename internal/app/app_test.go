package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/activity"
	"github.com/matthewbaird/nlquery/internal/config"
	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/keyword"
)

const testSchema = `
indexes: users: {
	aliases: ["用户"]
	fields: {
		name: {aliases: ["姓名"]}
		age: {type: "int", aliases: ["年龄"]}
		city: {type: "keyword", aliases: ["城市"]}
	}
}
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.cue")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Schema.File = path
	cfg.Translate.DefaultIndex = "users"
	cfg.Database.DSN = "file:" + t.Name() + "?mode=memory&cache=shared"
	return cfg
}

func TestNew_ParseOnly(t *testing.T) {
	a, err := New(context.Background(), testConfig(t), nil, Options{})
	require.NoError(t, err)
	defer a.Close()

	in, err := a.Service.Parse(context.Background(), "年龄大于18")
	require.NoError(t, err)
	q := in.(*intent.Query)
	assert.Equal(t, "年龄", q.Condition.FieldHint)

	_, err = a.Service.Execute(context.Background(), "年龄大于18")
	assert.Error(t, err)
}

func TestNew_DatabaseAndEvents(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t), nil, Options{Database: true, Events: true})
	require.NoError(t, err)
	defer a.Close()

	res, err := a.Service.Execute(ctx, "城市等于北京")
	require.NoError(t, err)
	assert.Equal(t, "users", res.Meta.Table)

	entries, _, total, err := a.Service.History(ctx, activity.QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "城市等于北京", entries[0].Query)

	families, err := a.Metrics.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNewParser_Options(t *testing.T) {
	cfg := config.ParserConfig{Segmenter: "whitespace", StopWords: []string{"请问"}}
	cfg.Keywords.Operator = map[string]string{"超出": "GT"}

	p, err := NewParser(cfg, nil, nil)
	require.NoError(t, err)
	op, ok := p.Keywords().Operators.FromKeyword("超出")
	require.True(t, ok)
	assert.Equal(t, keyword.OpGT, op)

	in, err := p.Parse("请问 age 超出 18")
	require.NoError(t, err)
	assert.Equal(t, keyword.OpGT, in.(*intent.Query).Condition.Operator)

	_, err = NewParser(config.ParserConfig{Segmenter: "jieba"}, nil, nil)
	assert.Error(t, err)
}

func TestNew_BadSchema(t *testing.T) {
	cfg := testConfig(t)
	cfg.Schema.File = filepath.Join(t.TempDir(), "missing.cue")
	_, err := New(context.Background(), cfg, nil, Options{})
	assert.Error(t, err)
}
