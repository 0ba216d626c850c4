package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/repl/session"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/service"
	"github.com/matthewbaird/nlquery/internal/translate"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	reg := schema.NewRegistry()
	reg.Register(&schema.IndexSchema{
		Name:      "orders",
		Aliases:   []string{"订单"},
		TimeField: "created_at",
		Fields: map[string]*schema.FieldMeta{
			"amount": {Type: schema.FieldFloat, Aliases: []string{"金额"}},
		},
	})
	svc, err := service.New(nlq.New(), service.Config{Translate: translate.Context{Registry: reg}})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return New(svc)
}

func TestSplit(t *testing.T) {
	cmd, args := Split("  :target  sql ")
	assert.Equal(t, "target", cmd)
	assert.Equal(t, []string{"sql"}, args)

	cmd, args = Split(":")
	assert.Empty(t, cmd)
	assert.Empty(t, args)

	assert.True(t, IsMeta(" :help"))
	assert.False(t, IsMeta("年龄大于18"))
}

func TestHandler_Target(t *testing.T) {
	h := newHandler(t)
	sess := session.NewSession()

	res, err := h.Execute(sess, "target", nil)
	require.NoError(t, err)
	assert.Equal(t, "Target: intent", res.Output)

	res, err = h.Execute(sess, "target", []string{"sql"})
	require.NoError(t, err)
	assert.Equal(t, "Target: sql", res.Output)
	assert.Equal(t, session.TargetSQL, sess.CurrentTarget())

	_, err = h.Execute(sess, "target", []string{"mongo"})
	assert.Error(t, err)
}

func TestHandler_History(t *testing.T) {
	h := newHandler(t)
	sess := session.NewSession()

	res, err := h.Execute(sess, "history", nil)
	require.NoError(t, err)
	assert.Equal(t, "(no history)", res.Output)

	sess.AddHistory("年龄大于18")
	res, err = h.Execute(sess, "history", nil)
	require.NoError(t, err)
	assert.Equal(t, "  1  年龄大于18\n", res.Output)
}

func TestHandler_Keywords(t *testing.T) {
	h := newHandler(t)
	res, err := h.Execute(session.NewSession(), "keywords", []string{"logic"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "logic:")
	assert.Contains(t, res.Output, "或者")
	assert.NotContains(t, res.Output, "operator:")

	res, err = h.Execute(session.NewSession(), "keywords", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "operator:")
	assert.Contains(t, res.Output, "time_range:")

	_, err = h.Execute(session.NewSession(), "keywords", []string{"colour"})
	assert.Error(t, err)
}

func TestHandler_Tokens(t *testing.T) {
	h := newHandler(t)
	res, err := h.Execute(session.NewSession(), "tokens", []string{"年龄大于18"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "Operator")
	assert.Contains(t, res.Output, "大于  (GT)")

	_, err = h.Execute(session.NewSession(), "tokens", nil)
	assert.Error(t, err)
}

func TestHandler_Schema(t *testing.T) {
	h := newHandler(t)
	res, err := h.Execute(session.NewSession(), "schema", nil)
	require.NoError(t, err)
	assert.Contains(t, res.Output, "orders")

	res, err = h.Execute(session.NewSession(), "schema", []string{"订单"})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "Index: orders (orders)")
	assert.Contains(t, res.Output, "Time field: created_at")
	assert.Contains(t, res.Output, "金额")

	_, err = h.Execute(session.NewSession(), "schema", []string{"nope"})
	assert.Error(t, err)
}

func TestHandler_ClearAndUnknown(t *testing.T) {
	h := newHandler(t)
	res, err := h.Execute(session.NewSession(), "clear", nil)
	require.NoError(t, err)
	assert.True(t, res.Clear)

	_, err = h.Execute(session.NewSession(), "frobnicate", nil)
	assert.Error(t, err)
}
