// Package cli provides the faqrag commands.
//
// Commands:
//   - serve: HTTP API server
//   - mcp: Model Context Protocol server over stdio
//   - ask: one-shot or interactive question answering
//   - version: version information
//
// All long-running commands shut down gracefully on SIGINT/SIGTERM via
// context cancellation.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"faqrag/internal/config"
)

// Version is stamped into banners and the MCP handshake.
const Version = "1.0.0"

var (
	cfgFile string
	cfg     *config.AppConfig
)

var rootCmd = &cobra.Command{
	Use:   "faqrag",
	Short: "FAQ answering over your documents with retrieval-augmented generation",
	Long: `faqrag indexes a directory of FAQ documents, embeds them with OpenAI,
and answers questions grounded in the retrieved chunks, with source
citations.

Example usage:
  faqrag serve                          # Start the HTTP API
  faqrag mcp                            # Serve as an MCP tool over stdio
  faqrag ask "How do I reset my password?"`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, _, err = config.LoadDefault()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

// Execute runs the CLI. The logger is initialized once here so every
// command logs to stderr, keeping stdout clean for command output.
func Execute() {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml, falling back to ~/.config/faqrag/config.yaml)")
}
