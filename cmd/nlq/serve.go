package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/app"
	"github.com/matthewbaird/nlquery/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the parser over HTTP and the REPL over WebSocket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = servePort
		}
		a, err := app.New(cmd.Context(), cfg, log, app.Options{Database: true, Events: true})
		if err != nil {
			return err
		}
		defer a.Close()

		log.Info("schema loaded", zap.Strings("indexes", a.Schema.IndexNames()))
		return server.Run(cmd.Context(), server.Config{
			Port:     cfg.Server.Port,
			Service:  a.Service,
			Gatherer: a.Metrics,
			Logger:   log,
		})
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "listen port (overrides server.port)")
}
