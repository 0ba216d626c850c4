package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/matthewbaird/nlquery/internal/app"
	"github.com/matthewbaird/nlquery/internal/intent"
)

var parseTokens bool

var parseCmd = &cobra.Command{
	Use:   "parse <query>",
	Short: "Print the intent of a query as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		text := strings.Join(args, " ")
		if parseTokens {
			return printJSON(a.Service.Tokens(text))
		}
		in, err := a.Service.Parse(cmd.Context(), text)
		if err != nil {
			return err
		}
		data, err := intent.Marshal(in)
		if err != nil {
			return err
		}
		return printJSON(json.RawMessage(data))
	},
}

var translateTarget string

var translateCmd = &cobra.Command{
	Use:   "translate <query>",
	Short: "Print the Elasticsearch body or SQL for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		tr, err := a.Service.TranslateText(cmd.Context(), translateTarget, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return printJSON(tr.Query)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseTokens, "tokens", false, "print the token stream instead of the intent")
	translateCmd.Flags().StringVarP(&translateTarget, "target", "t", "es", "target: es or sql")
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding output")
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}
