package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/infra/server/grpc/interceptors"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type Server struct {
	*grpc.Server

	addr     string
	logger   *slog.Logger
	listener net.Listener
}

func NewServer(cfg *config.Config, logger *slog.Logger, tp trace.TracerProvider) *Server {
	l := logger.With("component", "grpc")

	recoveryOpt := recovery.WithRecoveryHandler(func(p any) error {
		l.Error("GRPC_PANIC_RECOVERED", "panic", p)
		return status.Error(codes.Internal, "internal error")
	})

	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler(otelgrpc.WithTracerProvider(tp))),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
			logging.StreamServerInterceptor(interceptorLogger(l), logging.WithLogOnEvents(logging.StartCall, logging.FinishCall)),
			interceptors.NewStreamMetaInterceptor(),
		),
		grpc.ChainUnaryInterceptor(
			recovery.UnaryServerInterceptor(recoveryOpt),
			logging.UnaryServerInterceptor(interceptorLogger(l)),
		),
	)

	return &Server{
		Server: srv,
		addr:   cfg.GRPC.Addr,
		logger: l,
	}
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("grpc listen %s: %w", s.addr, err)
	}
	s.listener = lis

	go func() {
		if err := s.Serve(lis); err != nil {
			s.logger.Error("GRPC_SERVE_FAILED", "error", err)
		}
	}()

	s.logger.Info("GRPC_LISTENING", "addr", lis.Addr().String())
	return nil
}

// Stop drains in-flight streams, forcing them closed once ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.Server.Stop()
		return ctx.Err()
	}
}

// Addr reports the bound address once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

func interceptorLogger(l *slog.Logger) logging.Logger {
	return logging.LoggerFunc(func(ctx context.Context, lvl logging.Level, msg string, fields ...any) {
		l.Log(ctx, slog.Level(lvl), msg, fields...)
	})
}
