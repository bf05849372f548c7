package grpcmarshaller_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
	grpcmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/grpc"
)

func TestMarshallGiftToStruct(t *testing.T) {
	ev := event.NewGiftEvent(model.GiftPayload{
		Sender:      model.Sender{UniqueID: "bob", Nickname: "Bob"},
		GiftID:      5655,
		GiftName:    "Rose",
		RepeatCount: 2,
		Timestamp:   1700000000000,
	})

	s, err := grpcmarshaller.MarshallDeliveryEvent(ev)
	require.NoError(t, err)

	f := s.GetFields()
	assert.Equal(t, "gift", f["type"].GetStringValue())
	assert.Equal(t, ev.GetID(), f["id"].GetStringValue())
	assert.Equal(t, "Rose", f["gift_name"].GetStringValue())
	assert.EqualValues(t, 5655, f["gift_id"].GetNumberValue())
	assert.EqualValues(t, 2, f["repeat_count"].GetNumberValue())
	assert.EqualValues(t, 1700000000000, f["timestamp"].GetNumberValue())
	assert.False(t, f["repeat_end"].GetBoolValue())
}
