// Command nlq parses natural-language queries into intents, translates
// them to Elasticsearch or SQL, and serves the parser over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/config"
	"github.com/matthewbaird/nlquery/internal/logging"
)

var (
	configFile string
	logJSON    bool
	logLevel   string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "nlq",
	Short: "Natural-language query parser",
	Long: `nlq turns Chinese or English natural-language queries into structured
intents and translates them to Elasticsearch search bodies or SQL.

Examples:
  nlq parse "年龄大于18并且城市等于北京"
  nlq translate --target sql "按城市统计平均年龄"
  nlq repl
  nlq serve --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return err
		}
		if cmd.Flags().Changed("log-json") {
			cfg.Log.JSON = logJSON
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		log, err = logging.New(logging.Options{JSON: cfg.Log.JSON, Level: cfg.Log.Level})
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log as JSON lines")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(parseCmd, translateCmd, replCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(err)
		stop()
		os.Exit(1)
	}
}

// printError renders parse errors with their caret line in colour.
func printError(err error) {
	pterm.Error.WithWriter(os.Stderr).Println(err.Error())
}
