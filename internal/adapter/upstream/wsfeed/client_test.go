package wsfeed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/internal/adapter/upstream/wsfeed"
	"github.com/webitel/live-relay-service/internal/service/dto"
)

type listener struct {
	mu     sync.Mutex
	events []string
}

func (l *listener) add(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, s)
}

func (l *listener) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *listener) OnConnect(roomID string)     { l.add("connect:" + roomID) }
func (l *listener) OnDisconnect()               { l.add("disconnect") }
func (l *listener) OnComment(c *dto.CommentDTO) { l.add("comment:" + c.Comment) }
func (l *listener) OnGift(g *dto.GiftDTO)       { l.add("gift:" + g.Gift.Name) }

// bridge serves frames to one client, then either closes or holds the link.
func bridge(t *testing.T, frames []string, hold bool) (*httptest.Server, <-chan string) {
	t.Helper()
	queries := make(chan string, 1)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.Query().Get("unique_id")

		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()

		for _, f := range frames {
			assert.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(f)))
		}

		if hold {
			// Wait for the client's close handshake.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
		_ = conn.WriteMessage(websocket.CloseMessage, msg)
	}))
	t.Cleanup(srv.Close)
	return srv, queries
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
}

func TestClientDispatchesFrames(t *testing.T) {
	srv, queries := bridge(t, []string{
		`{"event":"connect","data":{"room_id":"42"}}`,
		`{"event":"like","data":{}}`,
		`garbage`,
		`{"event":"comment","data":{"msg_id":"1","user":{"unique_id":"a"},"comment":"hi"}}`,
		`{"event":"gift","data":{"msg_id":"2","user":{"unique_id":"b"},"gift":{"id":1,"name":"Rose"}}}`,
		`{"event":"disconnect"}`,
	}, false)

	l := &listener{}
	c := wsfeed.New(wsURL(srv), "alice", nil)

	err := c.Run(context.Background(), l)
	require.NoError(t, err, "normal closure ends the session cleanly")

	assert.Equal(t, "alice", <-queries)
	assert.Equal(t, []string{"connect:42", "comment:hi", "gift:Rose", "disconnect"}, l.snapshot())
}

func TestClientStopsOnCancel(t *testing.T) {
	srv, _ := bridge(t, []string{`{"event":"connect"}`}, true)

	l := &listener{}
	c := wsfeed.New(wsURL(srv), "alice", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, l) }()

	require.Eventually(t, func() bool { return len(l.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestClientDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	err := wsfeed.New(wsURL(srv), "alice", nil).Run(context.Background(), &listener{})
	assert.Error(t, err)
}
