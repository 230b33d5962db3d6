package cli

import (
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/mcp"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var (
	mcpPort     int
	mcpHost     string
	mcpShutdown time.Duration
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the library to AI assistants over MCP",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serves the Model Context Protocol so an assistant can analyse passages
against the library and open the sections that come back.

Tools:      analyze, navigate, list_sections
Resources:  lens://documents, lens://stats, lens://documents/{documentId}/sections

JSON-RPC runs over stdio unless --port is set, in which case the server
speaks streamable HTTP (useful with the MCP Inspector).

  lens mcp serve
  lens mcp serve --port 8080 --host 0.0.0.0

To register lens with an assistant:

  {"mcpServers": {"lens": {"command": "/path/to/lens", "args": ["mcp", "serve"]}}}`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "serve HTTP on this port instead of stdio")
	mcpServeCmd.Flags().StringVar(&mcpHost, "host", "localhost", "interface to bind in HTTP mode")
	mcpServeCmd.Flags().DurationVar(&mcpShutdown, "shutdown-timeout", 5*time.Second, "grace period for open HTTP requests")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if analysisService == nil {
		return errAnalysisNotConfigured
	}
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	server, err := mcp.NewServer(
		&mcp.Ports{Analysis: analysisService, Library: libraryService},
		mcp.WithVersion(version),
		mcp.WithShutdownTimeout(mcpShutdown),
	)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if mcpPort <= 0 {
		logger.Debug("mcp: serving stdio")
		return server.Run(ctx)
	}

	addr := net.JoinHostPort(mcpHost, strconv.Itoa(mcpPort))
	cmd.PrintErrf("MCP server listening on http://%s\n", addr)
	return server.RunHTTP(ctx, addr)
}
