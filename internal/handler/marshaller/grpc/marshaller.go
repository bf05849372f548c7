package grpcmarshaller

import (
	"fmt"

	"github.com/webitel/live-relay-service/internal/domain/event"
	wsmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/ws"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MarshallDeliveryEvent converts ev into a google.protobuf.Struct carrying the
// same fields as the JSON feed. It reuses the memoized JSON of the event.
func MarshallDeliveryEvent(ev event.Eventer) (*structpb.Struct, error) {
	data, err := wsmarshaller.MarshallDeliveryEvent(ev)
	if err != nil {
		return nil, err
	}

	res := &structpb.Struct{}
	if err := protojson.Unmarshal(data, res); err != nil {
		return nil, fmt.Errorf("grpc marshaller: %w", err)
	}
	return res, nil
}
