package service_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	"github.com/webitel/live-relay-service/internal/service"
)

func newDeliverer(hub registry.Hubber) service.Deliverer {
	cfg := &config.Config{Hub: config.HubConfig{MailboxSize: 8}}
	return service.NewDeliverer(hub, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSubscribeReplaysIntoMailbox(t *testing.T) {
	hub := registry.NewHub()
	hub.Ingest(event.NewCommentEvent(model.CommentPayload{Text: "A"}))

	d := newDeliverer(hub)
	conn, err := d.Subscribe(model.ConnectMetadata{Transport: "test"})
	require.NoError(t, err)

	ev := <-conn.Recv()
	assert.Equal(t, "A", ev.GetPayload().(model.CommentPayload).Text)
	assert.Equal(t, 1, d.Status().Subscribers)
	assert.Len(t, d.RecentEvents(), 1)

	d.Unsubscribe(conn)
	d.Unsubscribe(conn)
	assert.Equal(t, 0, d.Status().Subscribers)

	_, ok := <-conn.Recv()
	assert.False(t, ok)
}

func TestSubscribeAfterShutdown(t *testing.T) {
	hub := registry.NewHub()
	hub.Shutdown()

	_, err := newDeliverer(hub).Subscribe(model.ConnectMetadata{})
	assert.ErrorIs(t, err, service.ErrUnavailable)
}
