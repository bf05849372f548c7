package grpc

import (
	"log/slog"

	server "github.com/webitel/live-relay-service/infra/server/grpc/interceptors"
	grpcmarshaller "github.com/webitel/live-relay-service/internal/handler/marshaller/grpc"
	"github.com/webitel/live-relay-service/internal/service"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

var _ RelayServer = (*DeliveryService)(nil)

type DeliveryService struct {
	logger    *slog.Logger
	deliverer service.Deliverer
}

func NewDeliveryService(logger *slog.Logger, deliverer service.Deliverer) *DeliveryService {
	return &DeliveryService{
		logger:    logger,
		deliverer: deliverer,
	}
}

// Stream relays the replay buffer and then live events until either side goes away.
func (d *DeliveryService) Stream(_ *emptypb.Empty, stream RelayStreamServer) error {
	ctx := stream.Context()

	// [METADATA] populated by the stream interceptor
	meta, _ := server.GetConnectMetadata(ctx)

	conn, err := d.deliverer.Subscribe(meta)
	if err != nil {
		return status.Error(codes.Unavailable, "hub is not accepting subscribers")
	}
	defer d.deliverer.Unsubscribe(conn)

	l := d.logger.With(slog.String("conn_id", conn.GetID().String()))

	// [EVENT_LOOP] bridges the connector mailbox with the HTTP/2 stream
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-conn.Recv():
			if !ok {
				return status.Error(codes.Unavailable, "session_terminated_by_server")
			}

			msg, err := grpcmarshaller.MarshallDeliveryEvent(ev)
			if err != nil {
				l.Error("[STREAM] marshal failed", slog.Any("err", err), slog.String("event_id", ev.GetID()))
				continue
			}

			if err := stream.Send(msg); err != nil {
				l.Warn("[STREAM] transmission error", slog.Any("err", err))
				return status.Error(codes.DataLoss, "stream_transmission_failed")
			}
		}
	}
}
