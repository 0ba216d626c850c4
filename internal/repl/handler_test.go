package repl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/nlquery/internal/executor"
	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/repl/wire"
	"github.com/matthewbaird/nlquery/internal/schema"
	"github.com/matthewbaird/nlquery/internal/service"
	"github.com/matthewbaird/nlquery/internal/translate"
)

func testRegistry() *schema.Registry {
	r := schema.NewRegistry()
	r.Register(&schema.IndexSchema{
		Name:    "users",
		Aliases: []string{"用户"},
		Fields: map[string]*schema.FieldMeta{
			"name": {Aliases: []string{"姓名"}},
			"age":  {Type: schema.FieldInt, Aliases: []string{"年龄"}},
			"city": {Type: schema.FieldKeyword, Aliases: []string{"城市"}},
		},
		FieldOrder: []string{"name", "age", "city"},
	})
	return r
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	reg := testRegistry()
	db, err := executor.Open("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	exec := executor.New(db)
	t.Cleanup(func() { exec.Close() })
	require.NoError(t, exec.Bootstrap(context.Background(), reg))

	svc, err := service.New(nlq.New(), service.Config{
		Translate: translate.Context{Registry: reg, DefaultIndex: "users"},
	}, service.WithExecutor(exec))
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	r := chi.NewRouter()
	RegisterRoutes(r, svc, nil)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	ctx  context.Context
	conn *websocket.Conn
}

func dial(t *testing.T, srv *httptest.Server) *client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/repl/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return &client{t: t, ctx: ctx, conn: conn}
}

type reply struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func (c *client) send(typ, id string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	require.NoError(c.t, wsjson.Write(c.ctx, c.conn, wire.ClientMessage{Type: typ, ID: id, Data: raw}))
}

func (c *client) read() reply {
	c.t.Helper()
	var r reply
	require.NoError(c.t, wsjson.Read(c.ctx, c.conn, &r))
	return r
}

func (c *client) execute(id, query string) reply {
	c.t.Helper()
	c.send("execute", id, wire.ExecuteData{Query: query})
	return c.read()
}

func TestREPL_SessionAndPing(t *testing.T) {
	c := dial(t, newServer(t))
	first := c.read()
	assert.Equal(t, "session", first.Type)
	var sd wire.SessionData
	require.NoError(t, json.Unmarshal(first.Data, &sd))
	assert.NotEmpty(t, sd.SessionID)
	assert.Equal(t, "intent", sd.Target)

	c.send("ping", "p1", nil)
	pong := c.read()
	assert.Equal(t, "pong", pong.Type)
	assert.Equal(t, "p1", pong.RequestID)
}

func TestREPL_Intent(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()

	r := c.execute("1", "年龄大于18")
	require.Equal(t, "intent", r.Type, string(r.Data))
	assert.Equal(t, "1", r.RequestID)
	assert.Contains(t, string(r.Data), `"GT"`)
	assert.Equal(t, "done", c.read().Type)
}

func TestREPL_ParseError(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()

	r := c.execute("1", "年龄大于")
	require.Equal(t, "error", r.Type)
	var ed wire.ErrorData
	require.NoError(t, json.Unmarshal(r.Data, &ed))
	assert.Equal(t, "parse_error", ed.Code)
	require.NotNil(t, ed.Detail)
	assert.Equal(t, "MISSING_VALUE", ed.Detail.Type)
}

func TestREPL_TargetSQL(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()

	r := c.execute("1", ":target sql")
	require.Equal(t, "meta", r.Type)
	assert.Contains(t, string(r.Data), "Target: sql")

	r = c.execute("2", "城市等于北京")
	require.Equal(t, "translation", r.Type, string(r.Data))
	var tr struct {
		Target string `json:"target"`
		Query  struct {
			SQL string `json:"sql"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(r.Data, &tr))
	assert.Equal(t, "sql", tr.Target)
	assert.Contains(t, tr.Query.SQL, "`city` = ?")
	assert.Equal(t, "done", c.read().Type)

	r = c.execute("3", ":history")
	assert.Contains(t, string(r.Data), "城市等于北京")
}

func TestREPL_Exec(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()
	c.execute("1", ":target exec")

	r := c.execute("2", "年龄大于18")
	require.Equal(t, "meta", r.Type, string(r.Data))
	var md wire.MetaData
	require.NoError(t, json.Unmarshal(r.Data, &md))
	assert.Equal(t, "users", md.Table)
	assert.Equal(t, 0, md.Total)

	done := c.read()
	assert.Equal(t, "done", done.Type)
}

func TestREPL_Autocomplete(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()

	c.send("autocomplete", "a1", wire.AutocompleteData{Query: "年龄大", Cursor: -1})
	r := c.read()
	require.Equal(t, "completions", r.Type)
	assert.Contains(t, string(r.Data), "大于")
}

func TestREPL_Errors(t *testing.T) {
	c := dial(t, newServer(t))
	c.read()

	c.send("shout", "x", nil)
	r := c.read()
	assert.Equal(t, "error", r.Type)
	assert.Contains(t, string(r.Data), "unknown_type")

	r = c.execute("1", "")
	assert.Contains(t, string(r.Data), "empty_query")

	r = c.execute("2", ":nope")
	assert.Contains(t, string(r.Data), "meta_error")
}

func TestREPL_REST(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Post(srv.URL+"/api/repl/session", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	var sess map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sess))
	assert.NotEmpty(t, sess["id"])
	assert.Equal(t, "intent", sess["target"])

	resp2, err := http.Get(srv.URL + "/api/repl/complete?q=ci")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var cd wire.CompletionsData
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&cd))
	require.NotEmpty(t, cd.Items)
	assert.Equal(t, "city", cd.Items[0].Label)

	resp3, err := http.Get(srv.URL + "/api/repl/schema")
	require.NoError(t, err)
	defer resp3.Body.Close()
	var indexes map[string]any
	require.NoError(t, json.NewDecoder(resp3.Body).Decode(&indexes))
	assert.Contains(t, indexes, "users")
}
