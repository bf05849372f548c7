package service

import (
	"log/slog"
	"time"

	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	"github.com/webitel/live-relay-service/internal/domain/registry"
)

// DeliveryMiddleware implements [DECORATOR_PATTERN] to add observability
// to subscriber lifecycle without touching delivery logic.
type DeliveryMiddleware struct {
	Next   Deliverer
	Logger *slog.Logger
}

func NewDeliveryMiddleware(next Deliverer, logger *slog.Logger) Deliverer {
	return &DeliveryMiddleware{
		Next:   next,
		Logger: logger,
	}
}

func (m *DeliveryMiddleware) Subscribe(meta model.ConnectMetadata) (registry.Connector, error) {
	start := time.Now()

	conn, err := m.Next.Subscribe(meta)
	if err != nil {
		m.Logger.Warn("SUBSCRIBE_REJECTED",
			"err", err,
			"transport", meta.Transport,
			"remote_ip", meta.RemoteIP,
		)
		return nil, err
	}

	m.Logger.Info("SUBSCRIBER_OPENED",
		"conn_id", conn.GetID(),
		"transport", meta.Transport,
		"remote_ip", meta.RemoteIP,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return conn, nil
}

func (m *DeliveryMiddleware) Unsubscribe(conn registry.Connector) {
	m.Next.Unsubscribe(conn)

	m.Logger.Info("SUBSCRIBER_CLOSED",
		"conn_id", conn.GetID(),
		"transport", conn.Metadata().Transport,
		"session_s", int64(time.Since(conn.CreatedAt()).Seconds()),
		"mailbox_dropped", conn.Dropped(),
	)
}

func (m *DeliveryMiddleware) Status() model.HubStats         { return m.Next.Status() }
func (m *DeliveryMiddleware) RecentEvents() []event.Eventer { return m.Next.RecentEvents() }
