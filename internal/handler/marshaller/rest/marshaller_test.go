package restmarshaller_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	restmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/rest"
)

func TestMarshallEvents(t *testing.T) {
	data, err := restmarshaller.MarshallEvents(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[],"count":0}`, string(data))

	ev := event.NewCommentEvent(model.CommentPayload{Sender: model.Sender{UniqueID: "a", Nickname: "A"}, Text: "hi", Timestamp: 1})
	data, err = restmarshaller.MarshallEvents([]event.Eventer{ev})
	require.NoError(t, err)
	assert.JSONEq(t, `{"events":[{"type":"comment","id":"`+ev.GetID()+`","unique_id":"a","nickname":"A","comment":"hi","timestamp":1}],"count":1}`, string(data))
}

func TestMarshallStatus(t *testing.T) {
	data, err := restmarshaller.MarshallStatus(model.HubStats{
		Connected:   true,
		Subscribers: 2,
		Buffered:    7,
		Ingested:    9,
		Delivered:   18,
		Dropped:     1,
		Uptime:      1500 * time.Millisecond,
	}, "alice")
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"connected": true,
		"username": "alice",
		"active_websockets": 2,
		"buffered_events": 7,
		"ingested": 9,
		"delivered": 18,
		"dropped": 1,
		"uptime_s": 1.5
	}`, string(data))
}
