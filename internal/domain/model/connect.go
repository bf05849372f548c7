package model

// ConnectMetadata describes the transport peer behind a subscriber.
type ConnectMetadata struct {
	Transport string // "ws" or "grpc"
	RemoteIP  string
	UserAgent string
}
