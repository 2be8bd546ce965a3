// Package server assembles the MCP server: it registers the nutrition,
// exercise and planning tool sets plus the status and help resources, and
// runs the configured transport.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nutrifit/nutrifit/internal/config"
	"github.com/nutrifit/nutrifit/internal/observe"
	"github.com/nutrifit/nutrifit/internal/tools/exercise"
	"github.com/nutrifit/nutrifit/internal/tools/nutrition"
	"github.com/nutrifit/nutrifit/internal/tools/planning"
	"github.com/nutrifit/nutrifit/internal/upstream/nutritionix"
	"github.com/nutrifit/nutrifit/internal/upstream/wger"
)

const (
	serverName    = "nutrifit"
	serverVersion = "1.0.0"

	// shutdownTimeout bounds the streamable-http drain on shutdown.
	shutdownTimeout = 10 * time.Second
)

// Server is the assembled MCP server with its transport configuration.
type Server struct {
	cfg     *config.Config
	mcp     *mcp.Server
	metrics *observe.Metrics
}

// New builds the MCP server and registers every tool and resource.
func New(cfg *config.Config, nix *nutritionix.Client, w *wger.Client, metrics *observe.Metrics) *Server {
	s := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	nutrition.New(nix, metrics).Register(s)
	exercise.New(w, nix, metrics).Register(s)
	planning.New(w, metrics).Register(s)

	srv := &Server{cfg: cfg, mcp: s, metrics: metrics}
	srv.registerResources()
	return srv
}

// Run serves MCP on the configured transport until ctx is cancelled. For
// stdio it returns when the client disconnects; for streamable-http it
// returns after a graceful drain.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Server.Transport {
	case config.TransportStdio:
		slog.Info("serving MCP over stdio")
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	case config.TransportStreamableHTTP:
		return s.runStreamableHTTP(ctx)
	default:
		return fmt.Errorf("unsupported transport %q", s.cfg.Server.Transport)
	}
}

func (s *Server) runStreamableHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	httpSrv := &http.Server{
		Addr:    s.cfg.Server.MCPListenAddr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving MCP over streamable-http", "addr", httpSrv.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down MCP listener: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
