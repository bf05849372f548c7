package rest_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/config"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	"github.com/webitel/live-relay-service/internal/handler/rest"
	"github.com/webitel/live-relay-service/internal/handler/ws"
	"github.com/webitel/live-relay-service/internal/service"
)

func newRouter(t *testing.T) (*registry.Hub, http.Handler) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	hub := registry.NewHub(registry.WithBufferSize(2), registry.WithMetrics(registry.NewMetrics(reg)))

	cfg := &config.Config{
		Live: config.LiveConfig{Username: "alice"},
		Hub:  config.HubConfig{MailboxSize: 8},
	}
	d := service.NewDeliverer(hub, cfg, logger)

	return hub, rest.NewRouter(logger, rest.NewRESTHandler(logger, d, cfg), ws.NewWSHandler(logger, d), reg)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestStatus(t *testing.T) {
	hub, h := newRouter(t)
	hub.SetConnected(true, "")

	rec := get(t, h, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["connected"])
	assert.Equal(t, "alice", body["username"])
	assert.EqualValues(t, 0, body["active_websockets"])
	assert.EqualValues(t, 1, body["buffered_events"])
}

func TestStatusCountsEverySubscriber(t *testing.T) {
	hub, h := newRouter(t)
	require.True(t, hub.Attach(registry.NewConnector(model.ConnectMetadata{Transport: "grpc"}, 8)))

	rec := get(t, h, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.EqualValues(t, 1, body["active_websockets"])
}

func TestEvents(t *testing.T) {
	hub, h := newRouter(t)
	for _, s := range []string{"A", "B", "C"} {
		hub.Ingest(event.NewCommentEvent(model.CommentPayload{Text: s}))
	}

	rec := get(t, h, "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Events []map[string]any `json:"events"`
		Count  int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Events, 2)
	assert.Equal(t, "B", body.Events[0]["comment"])
	assert.Equal(t, "C", body.Events[1]["comment"])
}

func TestIndexHealthAndMetrics(t *testing.T) {
	_, h := newRouter(t)

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/ws")

	assert.Equal(t, http.StatusNoContent, get(t, h, "/healthz").Code)

	rec = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "live_relay_upstream_connected")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/nope").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, func() int {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/status", nil))
		return rec.Code
	}())
}
