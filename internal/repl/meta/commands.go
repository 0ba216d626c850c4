// Package meta handles REPL meta-commands (:help, :clear, :env, :history,
// :keywords, :target, :tokens, :schema).
package meta

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/matthewbaird/nlquery/internal/repl/session"
	"github.com/matthewbaird/nlquery/internal/service"
)

// Handler dispatches meta-commands.
type Handler struct {
	svc *service.Service
}

// New creates a meta-command handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Result is the output of a meta-command execution.
type Result struct {
	Output string `json:"output"`
	Clear  bool   `json:"clear,omitempty"` // Signal frontend to clear screen
}

// IsMeta reports whether line is a meta-command.
func IsMeta(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), ":")
}

// Split breaks ":target sql" into "target" and ["sql"].
func Split(line string) (string, []string) {
	fields := strings.Fields(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if len(fields) == 0 {
		return "", nil
	}
	return fields[0], fields[1:]
}

// Execute runs a meta-command and returns the result.
func (h *Handler) Execute(sess *session.Session, command string, args []string) (*Result, error) {
	switch command {
	case "help":
		return h.help(), nil
	case "clear":
		return &Result{Clear: true}, nil
	case "env":
		return h.env(sess), nil
	case "history":
		return h.history(sess), nil
	case "keywords":
		return h.keywords(args)
	case "target":
		return h.target(sess, args)
	case "tokens":
		return h.tokens(args)
	case "schema":
		return h.schemaCmd(args)
	default:
		return nil, errors.Errorf("unknown meta-command ':%s'. Type :help for available commands", command)
	}
}

const helpText = `Natural-language queries, Chinese or English:
  年龄大于18并且城市等于北京
  查询用户表中城市在北京,上海的前10条
  按城市统计平均年龄
  最近7天的订单按创建时间降序
  age >= 18 and city = beijing order by age desc limit 5

Targets (:target):
  intent  print the parsed intent (default)
  es      translate to an Elasticsearch search body
  sql     translate to SQL
  exec    run the SQL on the configured database

Meta-commands:
  :help              Show help
  :clear             Clear the screen
  :env               Show session info
  :history           Show query history
  :keywords [dict]   List keywords (operator, logic, aggregation, sort, time_range)
  :target [name]     Show or set the target
  :tokens <query>    Show the token stream of a query
  :schema [index]    Show indexes and field aliases`

func (h *Handler) help() *Result {
	return &Result{Output: helpText}
}

func (h *Handler) env(sess *session.Session) *Result {
	out := fmt.Sprintf("Session: %s\nTarget: %s\nCreated: %s\nLast active: %s\nHistory entries: %d",
		sess.ID, sess.CurrentTarget(),
		sess.CreatedAt.Format("2006-01-02 15:04:05"),
		sess.LastActiveAt.Format("2006-01-02 15:04:05"),
		len(sess.Snapshot()))
	return &Result{Output: out}
}

func (h *Handler) history(sess *session.Session) *Result {
	hist := sess.Snapshot()
	if len(hist) == 0 {
		return &Result{Output: "(no history)"}
	}
	var b strings.Builder
	for i, entry := range hist {
		fmt.Fprintf(&b, "%3d  %s\n", i+1, entry)
	}
	return &Result{Output: b.String()}
}

func (h *Handler) keywords(args []string) (*Result, error) {
	tables := service.KeywordTable(h.svc.Keywords())
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	if len(args) > 0 {
		if _, ok := tables[args[0]]; !ok {
			return nil, errors.Errorf("unknown dictionary '%s' (one of %s)", args[0], strings.Join(names, ", "))
		}
		names = args[:1]
	}

	var b strings.Builder
	for _, name := range names {
		// Group surfaces by the value they resolve to.
		byValue := map[string][]string{}
		for surface, v := range tables[name] {
			byValue[v] = append(byValue[v], surface)
		}
		values := make([]string, 0, len(byValue))
		for v := range byValue {
			values = append(values, v)
		}
		sort.Strings(values)

		fmt.Fprintf(&b, "%s:\n", name)
		for _, v := range values {
			surfaces := byValue[v]
			sort.Strings(surfaces)
			fmt.Fprintf(&b, "  %-14s %s\n", v, strings.Join(surfaces, " "))
		}
	}
	return &Result{Output: b.String()}, nil
}

func (h *Handler) target(sess *session.Session, args []string) (*Result, error) {
	if len(args) == 0 {
		return &Result{Output: "Target: " + string(sess.CurrentTarget())}, nil
	}
	t, ok := session.ParseTarget(args[0])
	if !ok {
		return nil, errors.Errorf("unknown target '%s' (intent, es, sql or exec)", args[0])
	}
	sess.SetTarget(t)
	return &Result{Output: "Target: " + string(t)}, nil
}

func (h *Handler) tokens(args []string) (*Result, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: :tokens <query>")
	}
	var b strings.Builder
	for _, t := range h.svc.Tokens(strings.Join(args, " ")) {
		fmt.Fprintf(&b, "%3d  %-16s %s", t.Pos, t.Type, t.Text)
		if t.Value != nil {
			fmt.Fprintf(&b, "  (%v)", t.Value)
		}
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return &Result{Output: "(no tokens)"}, nil
	}
	return &Result{Output: b.String()}, nil
}

func (h *Handler) schemaCmd(args []string) (*Result, error) {
	reg := h.svc.Registry()
	if len(args) == 0 {
		names := reg.IndexNames()
		if len(names) == 0 {
			return &Result{Output: "(no schema loaded)"}, nil
		}
		return &Result{Output: fmt.Sprintf("Indexes (%d):\n  %s", len(names), strings.Join(names, "\n  "))}, nil
	}

	is := reg.Index(args[0])
	if is == nil {
		return nil, errors.Errorf("unknown index '%s'", args[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Index: %s (%s)\n", is.Name, is.Table)
	if len(is.Aliases) > 0 {
		fmt.Fprintf(&b, "Aliases: %s\n", strings.Join(is.Aliases, ", "))
	}
	if is.TimeField != "" {
		fmt.Fprintf(&b, "Time field: %s\n", is.TimeField)
	}
	fmt.Fprintf(&b, "\nFields:\n")
	for _, fname := range is.FieldOrder {
		f := is.Fields[fname]
		fmt.Fprintf(&b, "  %-20s %-8s %s\n", fname, f.Type, strings.Join(f.Aliases, ", "))
	}
	return &Result{Output: b.String()}, nil
}
