package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driving/mcp"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server exposing the vault to AI
assistants.

By default, the server communicates over stdio using JSON-RPC and can be
used with Claude Desktop and other MCP-compatible AI assistants.

Use --port to start an HTTP server instead.

Examples:
  # Stdio mode (default, for Claude Desktop)
  vault mcp serve

  # HTTP mode (for MCP Inspector, remote access)
  vault mcp serve --port 8080

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "vault": {
        "command": "/path/to/vault",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	// The server is long-running, so pick up documents a previous
	// process left behind before accepting requests.
	if ingestService != nil {
		outcomes, err := ingestService.RecoverStale(cmd.Context())
		if err != nil {
			logger.Warn("startup recovery failed: %v", err)
		} else if len(outcomes) > 0 {
			logger.Info("startup recovery reprocessed %d documents", len(outcomes))
		}
	}

	ports := &mcp.Ports{
		Search:  searchService,
		Sampler: samplerService,
		Ingest:  ingestService,
		Library: libraryService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
