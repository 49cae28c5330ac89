package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/dependents/pkg/adapters/http"
	mcpAdapter "github.com/aretw0/dependents/pkg/adapters/mcp"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	Addr string
	// Ready is called with the bound address once the server listens.
	Ready func(addr string)
}

const shutdownTimeout = 5 * time.Second

// RunServe serves the project graph over HTTP until ctx is cancelled.
func RunServe(ctx context.Context, w io.Writer, p *Project, opts ServeOptions) error {
	handler := httpAdapter.NewHandler(p.Graph,
		httpAdapter.WithEngine(p.Engine),
		httpAdapter.WithLogger(p.Logger),
		httpAdapter.WithMetrics(p.Registry),
	)

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.Addr, err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Serve(ln)
	}()

	printSystemMessage(w, "Serving %s on http://%s", p.Path, ln.Addr())
	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		if sig := signalOf(ctx); sig != nil {
			p.Logger.Info("Stopping server (signal received)", "signal", sig)
			printSystemMessage(w, "Received %s, shutting down", sig)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			p.Logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(w, "Server stopped gracefully")
		return nil
	}
}

// MCPOptions configures the mcp command.
type MCPOptions struct {
	// SSEAddr serves over SSE when set; otherwise stdio is used.
	SSEAddr string
}

// RunMCP exposes the project graph as an MCP server.
func RunMCP(ctx context.Context, p *Project, opts MCPOptions) error {
	srv := mcpAdapter.NewServer(p.Engine, p.Graph, p.Def)
	if opts.SSEAddr != "" {
		return srv.ServeSSE(ctx, opts.SSEAddr)
	}
	return srv.ServeStdio()
}
