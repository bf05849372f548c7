package rest

import (
	_ "embed"
	"log/slog"
	"net/http"

	"github.com/webitel/live-relay-service/config"
	restmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/rest"
	"github.com/webitel/live-relay-service/internal/service"
)

//go:embed static/index.html
var indexPage []byte

type RESTHandler struct {
	logger    *slog.Logger
	deliverer service.Deliverer
	username  string
}

func NewRESTHandler(logger *slog.Logger, deliverer service.Deliverer, cfg *config.Config) *RESTHandler {
	return &RESTHandler{
		logger:    logger,
		deliverer: deliverer,
		username:  cfg.Live.Username,
	}
}

// Index serves the browser test page for the WebSocket feed.
func (h *RESTHandler) Index(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexPage)
}

func (h *RESTHandler) Status(w http.ResponseWriter, _ *http.Request) {
	data, err := restmarshaller.MarshallStatus(h.deliverer.Status(), h.username)
	h.writeJSON(w, data, err)
}

// Events returns the replay buffer, oldest first.
func (h *RESTHandler) Events(w http.ResponseWriter, _ *http.Request) {
	data, err := restmarshaller.MarshallEvents(h.deliverer.RecentEvents())
	h.writeJSON(w, data, err)
}

func (h *RESTHandler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) writeJSON(w http.ResponseWriter, data []byte, err error) {
	if err != nil {
		h.logger.Error("REST_MARSHAL_FAILED", "error", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
