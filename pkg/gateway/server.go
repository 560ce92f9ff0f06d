// Package gateway provides the loopback HTTP server that fronts the
// dispatcher. It owns the process lifecycle: accept, bound request
// buffering, dispatch, response write.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worldmonitor/gatewayd/pkg/config"
	"github.com/worldmonitor/gatewayd/pkg/endpoint"
	"github.com/worldmonitor/gatewayd/pkg/httputil"
	"github.com/worldmonitor/gatewayd/pkg/logging"
)

// MaxRequestBodySize is the maximum request body buffered before dispatch
// (10MB). Larger bodies are truncated at this bound.
const MaxRequestBodySize = 10 << 20

// Dispatcher is the gateway's routing core. dispatch.Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *endpoint.Request) *endpoint.Response
}

// Server is the loopback gateway HTTP server.
type Server struct {
	cfg        *config.Config
	dispatcher Dispatcher
	log        *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.RWMutex
	running    bool
	startTime  time.Time
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// NewServer creates a gateway Server around a dispatcher.
func NewServer(cfg *config.Config, d Dispatcher, opts ...Option) *Server {
	s := &Server{
		cfg:        cfg,
		dispatcher: d,
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start binds to loopback and begins serving. It returns once the listener
// is accepting; serving continues on a background goroutine.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("gateway is already running")
	}

	// Loopback only. Anything else on the machine cannot reach this port
	// from the network.
	addr := fmt.Sprintf("127.0.0.1:%d", s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:     http.HandlerFunc(s.handle),
		ReadTimeout: 30 * time.Second,
	}

	s.log.Info("gateway started", "addr", addr, "mode", s.cfg.Mode, "remote", s.cfg.RemoteOrigin)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("gateway server error", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	err := s.httpServer.Shutdown(ctx)
	s.running = false
	s.log.Info("gateway stopped")
	return err
}

// IsRunning returns whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Uptime returns the server uptime in seconds.
func (s *Server) Uptime() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.running {
		return 0
	}
	return int(time.Since(s.startTime).Seconds())
}

// Handler returns the server's http.Handler, for tests that drive it
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handle)
}

// handle is the per-request entry point. It enforces the reserved-prefix
// boundary, buffers the body, dispatches, and writes the response. A panic
// escaping the dispatcher becomes a 500; the process never dies from one
// bad request.
func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	log := s.log.With("requestId", requestID)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic during dispatch", "path", r.URL.Path, "panic", rec)
			httputil.WriteInternalError(w, "internal gateway error")
		}
	}()

	if !endpoint.HasPrefix(r.URL.Path) {
		// Hard boundary: everything outside /api/ is not gateway traffic.
		httputil.WriteNotFound(w, "not found")
		return
	}

	req, err := endpoint.FromHTTP(r, MaxRequestBodySize)
	if err != nil {
		log.Warn("failed to read request body", "path", r.URL.Path, "error", err)
		httputil.WriteError(w, http.StatusBadRequest, "unreadable request body")
		return
	}

	resp := s.dispatcher.Dispatch(r.Context(), req)
	resp.Write(w)
}
