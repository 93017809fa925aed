// Package tcp serves the framed chat protocol over plain TCP sockets.
package tcp

import (
	"context"
	"fmt"
	"io"
	"net"

	"github.com/roomcast/roomcast/internal/protocol"
)

// Conn adapts a net.Conn to chat.Conn, translating between the stream and
// length-prefixed frames. Cancellation follows the TCP idiom: closing the
// connection unblocks any pending read or write, so the context arguments
// are not consulted.
type Conn struct {
	conn   net.Conn
	header [protocol.HeaderLength]byte
}

// NewConn wraps an accepted or dialed net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// ReadBody blocks until one complete frame arrived and returns its body.
// io.EOF on a frame boundary is a clean disconnect; EOF inside a frame
// surfaces as io.ErrUnexpectedEOF.
func (c *Conn) ReadBody(_ context.Context) ([]byte, error) {
	if _, err := io.ReadFull(c.conn, c.header[:]); err != nil {
		return nil, err
	}
	n, err := protocol.DecodeHeader(c.header[:])
	if err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(c.conn, body); err != nil {
		return nil, fmt.Errorf("read frame body: %w", err)
	}
	return body, nil
}

// WriteBody sends body as one frame in a single Write call.
func (c *Conn) WriteBody(_ context.Context, body []byte) error {
	frame, err := protocol.Encode(body)
	if err != nil {
		return err
	}
	_, err = c.conn.Write(frame)
	return err
}

// Close closes the underlying connection.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr reports the peer address.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
