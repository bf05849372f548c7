package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName        = "live.relay.v1.Relay"
	StreamFullMethod   = "/" + ServiceName + "/Stream"
	relayStreamMessage = "Stream"
)

// RelayServer is the server API for the live.relay.v1.Relay service.
// Events travel as google.protobuf.Struct with the JSON feed field names.
type RelayServer interface {
	Stream(*emptypb.Empty, RelayStreamServer) error
}

type RelayStreamServer interface {
	Send(*structpb.Struct) error
	grpc.ServerStream
}

type relayStreamServer struct {
	grpc.ServerStream
}

func (x *relayStreamServer) Send(m *structpb.Struct) error {
	return x.ServerStream.SendMsg(m)
}

func relayStreamHandler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(RelayServer).Stream(m, &relayStreamServer{stream})
}

var RelayServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RelayServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    relayStreamMessage,
			Handler:       relayStreamHandler,
			ServerStreams: true,
		},
	},
	Metadata: "live/relay/v1/relay.proto",
}

func RegisterRelayServer(s grpc.ServiceRegistrar, srv RelayServer) {
	s.RegisterService(&RelayServiceDesc, srv)
}

// RelayStreamClient is the receiving half used by Go consumers and tests.
type RelayStreamClient interface {
	Recv() (*structpb.Struct, error)
	grpc.ClientStream
}

type relayStreamClient struct {
	grpc.ClientStream
}

func (x *relayStreamClient) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// OpenRelayStream starts a live.relay.v1.Relay/Stream call on cc.
func OpenRelayStream(ctx context.Context, cc grpc.ClientConnInterface, opts ...grpc.CallOption) (RelayStreamClient, error) {
	stream, err := cc.NewStream(ctx, &RelayServiceDesc.Streams[0], StreamFullMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &relayStreamClient{stream}
	if err := x.ClientStream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}
