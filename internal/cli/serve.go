package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"faqrag/internal/api"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Index the FAQ corpus and serve it over HTTP.

Endpoints:
  GET  /health   liveness probe
  POST /ask      answer a question with source citations

Examples:
  faqrag serve
  faqrag serve --addr 127.0.0.1:8080`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	printBanner(Version, cfg.OpenAI.LLMModel)

	svc, err := buildService(ctx, cfg, defaultProgressEnabled())
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr()
	}
	return api.NewServer(svc).Run(ctx, addr)
}
