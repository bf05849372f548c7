package service

import (
	"log/slog"

	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	"go.uber.org/fx"
)

var Module = fx.Module(
	"service",

	fx.Provide(NewDeliveryService),

	// [DECORATION_LAYER] Transports only ever see the observed Deliverer.
	fx.Provide(func(svc *DeliveryService, logger *slog.Logger) Deliverer {
		return NewDeliveryMiddleware(svc, logger.With("component", "delivery"))
	}),
)

// NewDeliverer assembles the decorated service outside of fx.
func NewDeliverer(hub registry.Hubber, cfg *config.Config, logger *slog.Logger) Deliverer {
	return NewDeliveryMiddleware(NewDeliveryService(hub, cfg), logger)
}
