package core

// Frame is a marshaled event ready for the wire.
type Frame []byte

// SessionID is the opaque transport-connection id issued by the router
// middleware. It is stable for the life of one WebSocket connection.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
