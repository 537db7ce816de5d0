package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"faqrag/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server on stdio",
	Long: `Index the FAQ corpus and expose it as a Model Context Protocol tool.

MCP clients launch this command as a subprocess and call the ask_faq
tool over stdio. Pass the OpenAI key via the client's env config;
there is no interactive prompt on this transport.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// stdout belongs to the protocol: no banner, no progress bar.
	svc, err := buildService(ctx, cfg, false)
	if err != nil {
		return err
	}

	srv, err := mcp.NewServer(svc, cfg.Retrieval.TopKDefault)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	slog.Info("starting MCP server", "version", Version)
	return srv.Run(ctx, &mcpsdk.StdioTransport{})
}
