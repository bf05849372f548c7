package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/webitel/live-relay-service/config"
)

const readHeaderTimeout = 10 * time.Second

type Server struct {
	srv      *http.Server
	logger   *slog.Logger
	listener net.Listener
}

func NewServer(cfg *config.Config, handler http.Handler, logger *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
		logger: logger.With("component", "http"),
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("http listen %s: %w", s.srv.Addr, err)
	}
	s.listener = lis

	go func() {
		if err := s.srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP_SERVE_FAILED", "error", err)
		}
	}()

	s.logger.Info("HTTP_LISTENING", "addr", lis.Addr().String())
	return nil
}

// Stop closes listeners and waits for plain requests. Hijacked WebSocket
// connections are ended by the hub shutdown that precedes this call.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) Addr() string {
	if s.listener == nil {
		return s.srv.Addr
	}
	return s.listener.Addr().String()
}
