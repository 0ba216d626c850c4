package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/matthewbaird/nlquery/internal/app"
	"github.com/matthewbaird/nlquery/internal/executor"
	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/repl/autocomplete"
	"github.com/matthewbaird/nlquery/internal/repl/meta"
	"github.com/matthewbaird/nlquery/internal/repl/session"
	"github.com/matthewbaird/nlquery/internal/service"
)

const historyFile = ".nlq_history"

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive shell",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{Database: true})
		if err != nil {
			return err
		}
		defer a.Close()
		return runREPL(cmd.Context(), a.Service)
	},
}

type shell struct {
	svc  *service.Service
	sess *session.Session
	meta *meta.Handler
	out  io.Writer
}

func runREPL(ctx context.Context, svc *service.Service) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	ac := autocomplete.New(svc.Keywords(), svc.Registry())
	line.SetCompleter(func(text string) []string {
		var out []string
		for _, it := range ac.Complete(text, -1) {
			out = append(out, text+it.InsertText)
		}
		return out
	})

	histPath := ""
	if home, err := os.UserHomeDir(); err == nil {
		histPath = filepath.Join(home, historyFile)
		if f, err := os.Open(histPath); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	sh := &shell{svc: svc, sess: session.NewSession(), meta: meta.New(svc), out: os.Stdout}
	pterm.Info.Println("Type :help for help, Ctrl-D to exit.")

	for ctx.Err() == nil {
		text, err := line.Prompt(fmt.Sprintf("nlq[%s]> ", sh.sess.CurrentTarget()))
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			break // io.EOF
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		line.AppendHistory(text)
		if err := sh.eval(ctx, text); err != nil {
			printError(err)
		}
	}

	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

func (sh *shell) eval(ctx context.Context, text string) error {
	if meta.IsMeta(text) {
		cmd, args := meta.Split(text)
		res, err := sh.meta.Execute(sh.sess, cmd, args)
		if err != nil {
			return err
		}
		if res.Clear {
			fmt.Fprint(sh.out, "\033[H\033[2J")
			return nil
		}
		fmt.Fprintln(sh.out, res.Output)
		return nil
	}

	sh.sess.AddHistory(text)
	switch target := sh.sess.CurrentTarget(); target {
	case session.TargetIntent:
		in, err := sh.svc.Parse(ctx, text)
		if err != nil {
			return err
		}
		data, err := intent.Marshal(in)
		if err != nil {
			return err
		}
		return sh.printJSON(json.RawMessage(data))
	case session.TargetES, session.TargetSQL:
		tr, err := sh.svc.TranslateText(ctx, string(target), text)
		if err != nil {
			return err
		}
		return sh.printJSON(tr.Query)
	case session.TargetExec:
		res, err := sh.svc.Execute(ctx, text)
		if err != nil {
			return err
		}
		return sh.printResult(res)
	}
	return nil
}

func (sh *shell) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	fmt.Fprintln(sh.out, string(data))
	return nil
}

func (sh *shell) printResult(res *executor.Result) error {
	pterm.FgGray.Println(res.SQL)
	if res.Count != nil {
		fmt.Fprintf(sh.out, "%d row(s) affected\n", *res.Count)
		return nil
	}
	table, err := rowsTable(res.Rows)
	if err != nil {
		return err
	}
	if len(table) > 1 {
		if err := pterm.DefaultTable.WithHasHeader().WithWriter(sh.out).WithData(table).Render(); err != nil {
			return err
		}
	}
	fmt.Fprintf(sh.out, "(%d rows)\n", len(res.Rows))
	return nil
}

// rowsTable lays rows out under a header of their sorted column names.
func rowsTable(rows []json.RawMessage) ([][]string, error) {
	decoded := make([]map[string]any, len(rows))
	cols := map[string]bool{}
	for i, r := range rows {
		if err := json.Unmarshal(r, &decoded[i]); err != nil {
			return nil, errors.Wrap(err, "decoding row")
		}
		for k := range decoded[i] {
			cols[k] = true
		}
	}
	header := make([]string, 0, len(cols))
	for k := range cols {
		header = append(header, k)
	}
	sort.Strings(header)

	table := [][]string{header}
	for _, row := range decoded {
		line := make([]string, len(header))
		for j, c := range header {
			line[j] = cast.ToString(row[c])
		}
		table = append(table, line)
	}
	return table, nil
}
