// Package wsfeed reads webcast frames from a live bridge over WebSocket.
package wsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/webcast"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 45 * time.Second
	closeGrace = 2 * time.Second
	maxFrame   = 1 << 20
)

var _ webcast.Client = (*Client)(nil)

type Client struct {
	url      string
	username string
	dialer   *websocket.Dialer
	header   http.Header
	logger   *slog.Logger
}

// New builds a client for the bridge at rawURL following username.
func New(rawURL, username string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		url:      rawURL,
		username: username,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 15 * time.Second,
		},
		header: http.Header{"User-Agent": []string{"live-relay-service"}},
		logger: logger,
	}
}

// endpoint adds the followed broadcaster to the bridge URL.
func (c *Client) endpoint() (string, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return "", fmt.Errorf("wsfeed: parse url: %w", err)
	}
	q := u.Query()
	q.Set("unique_id", c.username)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Run dials the bridge and dispatches frames until the link drops or ctx ends.
// A cancelled ctx results in a close handshake and a nil error.
func (c *Client) Run(ctx context.Context, l webcast.Listener) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return err
	}

	conn, _, err := c.dialer.DialContext(ctx, endpoint, c.header)
	if err != nil {
		return fmt.Errorf("wsfeed: dial: %w", err)
	}

	readDone := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.keepAlive(ctx, conn, readDone)
	}()

	err = c.readLoop(conn, l)
	close(readDone)
	wg.Wait()
	_ = conn.Close()

	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (c *Client) readLoop(conn *websocket.Conn, l webcast.Listener) error {
	conn.SetReadLimit(maxFrame)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("wsfeed: read: %w", err)
		}
		// Any frame proves the link is alive.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		if err := webcast.Dispatch(data, l); err != nil {
			if errors.Is(err, webcast.ErrUnsupported) {
				c.logger.Debug("WEBCAST_FRAME_SKIPPED", "err", err)
				continue
			}
			c.logger.Warn("WEBCAST_FRAME_DROPPED", "err", err)
		}
	}
}

// keepAlive pings the bridge and performs the close handshake on cancellation.
// Only control frames are written here, which gorilla allows concurrently.
func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn, readDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.logger.Debug("WEBCAST_PING_FAILED", "err", err)
			}
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			select {
			case <-readDone:
			case <-time.After(closeGrace):
			}
			_ = conn.Close()
			return
		}
	}
}
