/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/odbconv/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the odbconv REST API server. Bodies are converted in memory and
report counts are returned in X-Odb-* response headers.

Endpoints:
  POST /api/v1/encode    CSV in, ODB out
  POST /api/v1/decode    ODB in, CSV out
  GET  /api/v1/runs      archived runs
  GET  /metrics          Prometheus metrics

Examples:
  odbconv serve
  odbconv serve --bind 0.0.0.0 --port 9000 --api-key=mysecretkey`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := container.Config()

		flags := cmd.Flags()
		if flags.Changed("bind") {
			cfg.Server.Bind, _ = flags.GetString("bind")
		}
		if flags.Changed("port") {
			cfg.Server.Port, _ = flags.GetInt("port")
		}
		if flags.Changed("api-key") {
			cfg.Server.APIKey, _ = flags.GetString("api-key")
		}

		container.EnableRuntimeMetrics()
		deps, err := container.ServerDependencies()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		starter := container.GetServerFactory().CreateServerStarter()
		return starter.StartServer(ctx, deps, api.ServerConfig{
			Bind:         cfg.Server.Bind,
			Port:         cfg.Server.Port,
			APIKey:       cfg.Server.APIKey,
			CORSOrigins:  cfg.Server.CORSOrigins,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
		})
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("bind", "127.0.0.1", "Address to bind server to")
	serveCmd.Flags().IntP("port", "p", 9280, "Port to listen on")
	serveCmd.Flags().String("api-key", "", "API key required in X-API-Key (default: no key check)")
}
