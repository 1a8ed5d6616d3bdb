package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"SignalSage/internal/model"
	"SignalSage/internal/recorder"
	"SignalSage/internal/sage"
)

// Pipeline is the signal and chat surface the handlers call.
type Pipeline interface {
	Signal(ctx context.Context, pair string, depth int) (*model.Signal, error)
	Search(ctx context.Context, query string, topK int) []model.KnowledgeMatch
	Chat(ctx context.Context, query string, profile model.UserProfile) sage.Reply
}

// Deps are the components the HTTP layer is built from.
type Deps struct {
	Market      sage.MarketData
	Sage        Pipeline
	Recorder    recorder.Recorder
	MCP         http.Handler // optional, mounted at /mcp
	ProbeSymbol string       // quote fetched by /health
	Log         *zap.Logger
}

// Server is the HTTP API server.
type Server struct {
	httpServer *http.Server
	deps       Deps
	log        *zap.Logger
}

// New creates a Server listening on addr.
func New(addr string, deps Deps) *Server {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Recorder == nil {
		deps.Recorder = recorder.NewNoopRecorder()
	}
	if deps.ProbeSymbol == "" {
		deps.ProbeSymbol = "EUR/USD"
	}
	s := &Server{deps: deps, log: deps.Log}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the routed handler wrapped in middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /market/price", s.handlePrice)
	mux.HandleFunc("GET /market/history", s.handleHistory)
	mux.HandleFunc("POST /market/signal", s.handleSignal)
	mux.HandleFunc("GET /market/signal/history", s.handleSignalHistory)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /knowledge/search", s.handleKnowledgeSearch)
	if s.deps.MCP != nil {
		mux.Handle("/mcp", s.deps.MCP)
	}
	return s.withMiddleware(mux)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
