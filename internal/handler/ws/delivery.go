package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/webitel/live-relay-service/internal/domain/model"
	"github.com/webitel/live-relay-service/internal/domain/registry"
	wsmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/ws"
	"github.com/webitel/live-relay-service/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

const TransportName = "ws"

type WSHandler struct {
	logger    *slog.Logger
	deliverer service.Deliverer
	upgrader  websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, deliverer service.Deliverer) *WSHandler {
	return &WSHandler{
		logger:    logger,
		deliverer: deliverer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The feed is public and read-only.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. UPGRADE TO WEBSOCKET
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WS_UPGRADE_FAILED", "error", err, "remote", r.RemoteAddr)
		return
	}
	defer ws.Close()

	// 2. SUBSCRIBE: replay is already queued in the mailbox on success
	conn, err := h.deliverer.Subscribe(model.ConnectMetadata{
		Transport: TransportName,
		RemoteIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "unavailable")
		_ = ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}
	defer h.deliverer.Unsubscribe(conn)

	// 3. READ PUMP: drains client frames and detects a gone peer
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		readPump(ws)
	}()

	// 4. WRITE PUMP
	h.writePump(ws, conn, readDone)
}

func readPump(ws *websocket.Conn) {
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		// Inbound messages carry no meaning for a broadcast feed.
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHandler) writePump(ws *websocket.Conn, conn registry.Connector, readDone <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	l := h.logger.With("conn_id", conn.GetID().String())

	for {
		select {
		case <-readDone:
			return

		case ev, ok := <-conn.Recv():
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// [TERMINATION] hub shut down or dropped this subscriber
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed by server")
				_ = ws.WriteMessage(websocket.CloseMessage, msg)
				return
			}

			data, err := wsmarshaller.MarshallDeliveryEvent(ev)
			if err != nil {
				l.Error("WS_MARSHAL_FAILED", "error", err, "event_id", ev.GetID())
				continue
			}

			if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					l.Warn("WS_SEND_FAILED", "error", err)
				}
				return
			}

		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
