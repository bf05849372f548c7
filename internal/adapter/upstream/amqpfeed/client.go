// Package amqpfeed consumes webcast frames published to RabbitMQ by a live bridge.
package amqpfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/webcast"
)

var ErrSubscriptionClosed = errors.New("amqpfeed: subscription closed")

var _ webcast.Client = (*Client)(nil)

// SubscriberFactory builds a fresh subscriber for every session.
type SubscriberFactory func() (message.Subscriber, error)

// NewSubscriberFactory binds a durable queue to the configured topic exchange.
func NewSubscriberFactory(cfg config.AMQPConfig, logger watermill.LoggerAdapter) SubscriberFactory {
	return func() (message.Subscriber, error) {
		c := amqp.NewDurablePubSubConfig(cfg.URL, amqp.GenerateQueueNameConstant(cfg.Queue))
		c.Exchange = amqp.ExchangeConfig{
			GenerateName: func(string) string { return cfg.Exchange },
			Type:         "topic",
			Durable:      true,
		}
		c.QueueBind = amqp.QueueBindConfig{
			GenerateRoutingKey: func(string) string { return cfg.RoutingKey },
		}
		return amqp.NewSubscriber(c, logger)
	}
}

type Client struct {
	topic         string
	newSubscriber SubscriberFactory
	logger        *slog.Logger
}

func New(newSubscriber SubscriberFactory, topic string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		topic:         topic,
		newSubscriber: newSubscriber,
		logger:        logger,
	}
}

// Run treats a live subscription as a connected session: connect is
// signalled once the consumer is set up and disconnect when it ends.
// Connect frames published by the bridge while connected are ignored by the hub.
func (c *Client) Run(ctx context.Context, l webcast.Listener) error {
	sub, err := c.newSubscriber()
	if err != nil {
		return fmt.Errorf("amqpfeed: build subscriber: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			c.logger.Warn("AMQP_SUBSCRIBER_CLOSE_FAILED", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	msgs, err := sub.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("amqpfeed: subscribe %s: %w", c.topic, err)
	}

	l.OnConnect("")
	defer l.OnDisconnect()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrSubscriptionClosed
			}
			c.handle(msg, l)
		}
	}
}

// handle dispatches one message. Undecodable messages are acked as well:
// redelivering a poison pill would stall the whole feed.
func (c *Client) handle(msg *message.Message, l webcast.Listener) {
	defer msg.Ack()
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("PANIC_RECOVERED",
				"err", r,
				"stack", string(debug.Stack()),
				"msg_id", msg.UUID)
		}
	}()

	if err := webcast.Dispatch(msg.Payload, l); err != nil {
		if errors.Is(err, webcast.ErrUnsupported) {
			c.logger.Debug("WEBCAST_FRAME_SKIPPED", "err", err, "msg_id", msg.UUID)
			return
		}
		c.logger.Warn("WEBCAST_FRAME_DROPPED", "err", err, "msg_id", msg.UUID)
	}
}
