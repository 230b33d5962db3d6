package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-lens/internal/logger"
)

const (
	serverName = "lens"

	// defaultShutdownTimeout bounds how long in-flight HTTP requests may
	// run once the context is cancelled.
	defaultShutdownTimeout = 5 * time.Second
)

// instructions tells the client how the tools fit together.
const instructions = `Lens surfaces what other documents in the user's library say about a passage.
Call analyze with the passage text and the id of the document it came from.
Each snippet carries a section_id and page; pass them to navigate to open the
full section. list_sections enumerates a document's sections in order.`

// Server exposes the analysis and library services over MCP.
type Server struct {
	ports   *Ports
	server  *mcp.Server
	version string
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithVersion sets the version reported to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		if v != "" {
			s.version = v
		}
	}
}

// WithShutdownTimeout overrides the HTTP graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewServer creates a new MCP server with the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:   ports,
		version: "dev",
		timeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.server = mcp.NewServer(
		&mcp.Implementation{Name: serverName, Version: s.version},
		&mcp.ServerOptions{Instructions: instructions},
	)
	s.registerTools()
	s.registerResources()

	return s, nil
}

// Version returns the version reported to clients.
func (s *Server) Version() string {
	return s.version
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
// Nothing else may write to stdout while it runs.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("mcp: serving %s %s over stdio", serverName, s.version)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Handler returns the streamable HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is cancelled.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("mcp: shutdown: %v", err)
		}
	}()

	logger.Debug("mcp: serving %s %s on %s", serverName, s.version, addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-done
		return nil
	}
	return err
}
