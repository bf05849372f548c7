package registry

import (
	"context"
	"log/slog"

	"github.com/webitel/live-relay-service/config"
	"go.uber.org/fx"
)

var Module = fx.Module("registry",
	fx.Provide(
		NewMetrics,
		// [CLEAN_INJECTION] Configure Hub using Functional Options
		func(cfg *config.Config, logger *slog.Logger, m *Metrics) *Hub {
			return NewHub(
				WithBufferSize(cfg.Hub.BufferSize),
				WithFanoutConcurrency(cfg.Hub.FanoutConcurrency),
				WithLogger(logger.With("component", "hub")),
				WithMetrics(m),
			)
		},
		fx.Annotate(
			func(h *Hub) Hubber { return h },
			fx.As(new(Hubber)),
		),
	),
	fx.Invoke(func(lc fx.Lifecycle, h Hubber) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				h.Shutdown() // [GRACEFUL_SHUTDOWN] Release every transport session
				return nil
			},
		})
	}),
)
