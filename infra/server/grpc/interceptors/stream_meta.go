package interceptors

import (
	"context"

	"github.com/webitel/live-relay-service/internal/domain/model"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
)

type contextKey string

const (
	// ConnectMetaKey is the key used to store/retrieve ConnectMetadata from context
	ConnectMetaKey contextKey = "connect_meta"

	TransportName = "grpc"
)

// NewStreamMetaInterceptor records who opened the stream before the handler runs.
func NewStreamMetaInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := ss.Context()

		meta := model.ConnectMetadata{Transport: TransportName}
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			meta.RemoteIP = p.Addr.String()
		}
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if ua := md.Get("user-agent"); len(ua) > 0 {
				meta.UserAgent = ua[0]
			}
		}

		// [STREAM_WRAPPING] Override the context of the original stream
		wrapped := &wrappedStream{
			ServerStream: ss,
			ctx:          context.WithValue(ctx, ConnectMetaKey, meta),
		}

		return handler(srv, wrapped)
	}
}

// wrappedStream is a thin wrapper to inject a new context into a gRPC stream.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}

// GetConnectMetadata falls back to a bare grpc transport tag when the
// interceptor is not installed.
func GetConnectMetadata(ctx context.Context) (model.ConnectMetadata, bool) {
	meta, ok := ctx.Value(ConnectMetaKey).(model.ConnectMetadata)
	if !ok {
		return model.ConnectMetadata{Transport: TransportName}, false
	}
	return meta, true
}
