package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/acadrag/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = needsServices(&cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server so AI assistants can ask questions
about the current user's documents.

Tools:      ask, list_documents
Resources:  acadrag://notes, acadrag://documents

By default the server speaks JSON-RPC over stdio. Use --http to serve the
streamable HTTP transport instead.

Examples:
  acadrag mcp --user alice
  acadrag mcp --http :8081

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "acadrag": {
        "command": "/path/to/acadrag",
        "args": ["mcp", "--user", "alice"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
})

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	user, err := currentUser()
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(
		&mcp.Ports{Answer: answerService, Document: documentService},
		mcp.Options{UserID: user, TopK: topKOrDefault(0)},
	)
	if err != nil {
		return err
	}

	if mcpHTTPAddr != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
