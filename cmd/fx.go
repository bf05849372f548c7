package cmd

import (
	"log/slog"

	"github.com/webitel/live-relay-service/config"
	grpcsrv "github.com/webitel/live-relay-service/infra/server/grpc"
	httpsrv "github.com/webitel/live-relay-service/infra/server/http"
	"github.com/webitel/live-relay-service/internal/adapter/upstream"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	grpchandler "github.com/webitel/live-relay-service/internal/handler/grpc"
	"github.com/webitel/live-relay-service/internal/handler/rest"
	"github.com/webitel/live-relay-service/internal/handler/ws"
	"github.com/webitel/live-relay-service/internal/service"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// NewApp wires the relay. fx stops hooks in reverse order of registration,
// so the module order below gives upstream -> hub -> servers on shutdown.
func NewApp(cfg *config.Config, opts ...fx.Option) *fx.App {
	base := []fx.Option{
		fx.Provide(
			func() *config.Config { return cfg },
			ProvideLogger,
			ProvideWatermillLogger,
			ProvideMetricsRegistry,
			ProvideTracerProvider,
		),
		fx.WithLogger(func(l *slog.Logger) fxevent.Logger {
			fl := &fxevent.SlogLogger{Logger: l.With("component", "fx")}
			fl.UseLogLevel(slog.LevelDebug)
			return fl
		}),
		fx.Invoke(WatchConfig),
		httpsrv.Module,
		grpcsrv.Module,
		registry.Module,
		service.Module,
		ws.Module,
		rest.Module,
		grpchandler.Module,
		upstream.Module,
	}

	return fx.New(append(base, opts...)...)
}
