package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/verimodel/desktop/internal/bridge/commands"
	"github.com/verimodel/desktop/internal/bridge/handlers"
	"github.com/verimodel/desktop/internal/bridge/middleware"
	"github.com/verimodel/desktop/internal/utils"
)

const shutdownTimeout = 10 * time.Second

var ErrNotStarted = errors.New("bridge: server not started")

// Server exposes the command registry to the front end over local HTTP.
type Server struct {
	config Config
	server *http.Server
	ready  chan struct{}

	mu   sync.RWMutex
	addr string
}

func New(config Config, cmds *commands.Registry, checker handlers.BackendChecker, backendURL string) (*Server, error) {
	if config.Addr == "" {
		config.Addr = DefaultAddr
	}
	if _, err := utils.AddrToURL(config.Addr); err != nil {
		return nil, fmt.Errorf("bridge: %w", err)
	}

	routes := SetupRoutes(cmds, checker, &RouteConfig{
		Auth:       middleware.TokenAuthConfig{Token: config.Token},
		RateLimit:  config.RateLimit,
		StartedAt:  time.Now(),
		BackendURL: backendURL,
	})

	httpServer := &http.Server{
		Handler:           routes,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{
		config: config,
		server: httpServer,
		ready:  make(chan struct{}),
	}, nil
}

// Start binds the listener, closes Ready and serves until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("bridge: listen %s: %w", s.config.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	slog.Info("bridge start", "addr", "http://"+s.Addr(), "token", utils.MaskSecret(s.config.Token))
	close(s.ready)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err, ok := <-errCh:
		if !ok {
			return nil
		}
		return fmt.Errorf("bridge: serve: %w", err)
	}
}

func (s *Server) Stop(ctx context.Context) error {
	slog.Info("bridge stop")
	return s.server.Shutdown(ctx)
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr is the bound host:port, empty before Ready.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.addr
}

func (s *Server) URL() (string, error) {
	addr := s.Addr()
	if addr == "" {
		return "", ErrNotStarted
	}
	return utils.AddrToURL(addr)
}

func (s *Server) Token() string {
	return s.config.Token
}
