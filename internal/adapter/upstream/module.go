package upstream

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/amqpfeed"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/webcast"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/wsfeed"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("upstream",
	fx.Provide(
		NewClient,
		func(cfg *config.Config, client webcast.Client, hub registry.Hubber, logger *slog.Logger, tp trace.TracerProvider) *Adapter {
			return New(client, hub, cfg.Live.Username,
				WithLogger(logger.With("component", "upstream")),
				WithTracer(tp.Tracer("github.com/webitel/live-relay-service/upstream")),
				WithReconnect(cfg.Live.Reconnect),
				WithBackoff(cfg.Live.MinBackoff, cfg.Live.MaxBackoff),
				WithDedupeSize(cfg.Live.DedupeSize),
				WithBreaker(cfg.Live.BreakerFailures, cfg.Live.BreakerTimeout),
			)
		},
	),
	// [LIFECYCLE] Appended last so it stops first: subscribers still get the
	// disconnect event before the hub closes them.
	fx.Invoke(func(lc fx.Lifecycle, a *Adapter) {
		lc.Append(fx.Hook{
			OnStart: a.Start,
			OnStop:  a.Stop,
		})
	}),
)

// NewClient selects the source driver configured in live.source.
func NewClient(cfg *config.Config, logger *slog.Logger, wlog watermill.LoggerAdapter) (webcast.Client, error) {
	l := logger.With("component", "upstream", "source", cfg.Live.Source)

	switch cfg.Live.Source {
	case config.SourceWS:
		return wsfeed.New(cfg.Live.URL, cfg.Live.Username, l), nil
	case config.SourceAMQP:
		return amqpfeed.New(amqpfeed.NewSubscriberFactory(cfg.AMQP, wlog), cfg.AMQP.Exchange, l), nil
	default:
		return nil, fmt.Errorf("%w: unknown live.source %q", config.ErrInvalidConfig, cfg.Live.Source)
	}
}
