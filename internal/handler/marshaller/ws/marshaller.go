package wsmarshaller

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/webitel/live-relay-service/internal/domain/event"
	"github.com/webitel/live-relay-service/internal/domain/model"
)

var ErrUnknownPayload = errors.New("ws marshaller: unknown payload")

// MarshallDeliveryEvent renders the JSON wire form of ev.
// The result is memoized on the event, so a fan-out to many sockets encodes once.
// Callers must not modify the returned slice.
func MarshallDeliveryEvent(ev event.Eventer) ([]byte, error) {
	if cached, ok := ev.GetCached().([]byte); ok {
		return cached, nil
	}

	var res any
	switch p := ev.GetPayload().(type) {
	case model.SystemPayload:
		res = mapSystem(ev, p)
	case model.CommentPayload:
		res = mapComment(ev, p)
	case model.GiftPayload:
		res = mapGift(ev, p)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownPayload, p)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return nil, fmt.Errorf("ws marshaller: %w", err)
	}

	ev.SetCached(data)
	return data, nil
}
