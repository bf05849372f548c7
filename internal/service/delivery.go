package service

import (
	"errors"

	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	"github.com/webitel/live-relay-service/internal/domain/registry"
)

var ErrUnavailable = errors.New("delivery: hub is not accepting subscribers")

// [DELIVERY_SERVICE] PRIMARY INTERFACE FOR TRANSPORT HANDLERS (WebSocket/gRPC/HTTP)
type Deliverer interface {
	Subscribe(meta model.ConnectMetadata) (registry.Connector, error)
	Unsubscribe(conn registry.Connector)
	Status() model.HubStats
	RecentEvents() []event.Eventer
}

type DeliveryService struct {
	hub         registry.Hubber
	mailboxSize int
}

func NewDeliveryService(hub registry.Hubber, cfg *config.Config) *DeliveryService {
	return &DeliveryService{
		hub:         hub,
		mailboxSize: cfg.Hub.MailboxSize,
	}
}

// [SUBSCRIBE] HANDLES CONNECTION LIFECYCLE INITIATION
// The returned connector already holds the replayed history in its mailbox.
func (s *DeliveryService) Subscribe(meta model.ConnectMetadata) (registry.Connector, error) {
	conn := registry.NewConnector(meta, s.mailboxSize)

	if !s.hub.Attach(conn) {
		conn.Close()
		return nil, ErrUnavailable
	}
	return conn, nil
}

// [UNSUBSCRIBE] SAFE TO CALL MORE THAN ONCE
func (s *DeliveryService) Unsubscribe(conn registry.Connector) {
	s.hub.Detach(conn)
	conn.Close()
}

func (s *DeliveryService) Status() model.HubStats         { return s.hub.Status() }
func (s *DeliveryService) RecentEvents() []event.Eventer { return s.hub.RecentEvents() }
