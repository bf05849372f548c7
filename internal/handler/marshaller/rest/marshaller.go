package restmarshaller

import (
	"encoding/json"

	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	wsmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/ws"
)

// EventsResponse is the body of the recent-events polling API.
type EventsResponse struct {
	Events []json.RawMessage `json:"events"`
	Count  int               `json:"count"`
}

// StatusResponse keeps the field names dashboards already rely on.
type StatusResponse struct {
	Connected        bool    `json:"connected"`
	Username         string  `json:"username"`
	ActiveWebsockets int     `json:"active_websockets"` // every attached subscriber, gRPC streams included
	BufferedEvents   int     `json:"buffered_events"`
	Ingested         uint64  `json:"ingested"`
	Delivered        uint64  `json:"delivered"`
	Dropped          uint64  `json:"dropped"`
	UptimeSeconds    float64 `json:"uptime_s"`
}

// MarshallEvents renders events with the same per-event shape as the WebSocket feed.
func MarshallEvents(events []event.Eventer) ([]byte, error) {
	res := EventsResponse{
		Events: make([]json.RawMessage, 0, len(events)),
	}

	for _, ev := range events {
		data, err := wsmarshaller.MarshallDeliveryEvent(ev)
		if err != nil {
			return nil, err
		}
		res.Events = append(res.Events, data)
	}
	res.Count = len(res.Events)

	return json.Marshal(res)
}

func MarshallStatus(s model.HubStats, username string) ([]byte, error) {
	return json.Marshal(StatusResponse{
		Connected:        s.Connected,
		Username:         username,
		ActiveWebsockets: s.Subscribers,
		BufferedEvents:   s.Buffered,
		Ingested:         s.Ingested,
		Delivered:        s.Delivered,
		Dropped:          s.Dropped,
		UptimeSeconds:    s.Uptime.Seconds(),
	})
}
