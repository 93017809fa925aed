package chat

import "context"

// Conn is the byte transport a Session drives. It is a closed set: the TCP
// implementation frames bodies with the 4-byte length prefix, the WebSocket
// implementation maps one binary message to one body. Both enforce the
// protocol body limit, so a Session only ever sees legal bodies or an error.
type Conn interface {
	// ReadBody blocks until one complete frame body arrives. It returns
	// io.EOF or a transport error once the connection is gone, and
	// protocol.ErrBodyTooLong for an oversized frame; all are fatal for
	// the session.
	ReadBody(ctx context.Context) ([]byte, error)

	// WriteBody sends one complete frame body.
	WriteBody(ctx context.Context, body []byte) error

	// Close tears the connection down. Safe to call concurrently with a
	// blocked ReadBody/WriteBody, which it unblocks with an error, and
	// safe to call more than once.
	Close() error

	// RemoteAddr identifies the peer for logging.
	RemoteAddr() string
}
