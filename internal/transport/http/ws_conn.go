package http

import (
	"context"
	"io"

	"github.com/coder/websocket"

	"github.com/roomcast/roomcast/internal/protocol"
)

// wsConn adapts a WebSocket connection to chat.Conn. One message carries one
// frame body; the frame body limit applies in both directions. Outbound
// messages are binary, inbound text messages are tolerated and treated as
// bodies.
type wsConn struct {
	conn   *websocket.Conn
	remote string
}

func newWSConn(conn *websocket.Conn, remote string) *wsConn {
	conn.SetReadLimit(protocol.MaxBodyLength)
	return &wsConn{conn: conn, remote: remote}
}

func (c *wsConn) ReadBody(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	if err != nil {
		switch websocket.CloseStatus(err) {
		case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			return nil, io.EOF
		}
		return nil, err
	}
	if len(data) > protocol.MaxBodyLength {
		return nil, protocol.ErrBodyTooLong
	}
	return data, nil
}

func (c *wsConn) WriteBody(ctx context.Context, body []byte) error {
	if len(body) > protocol.MaxBodyLength {
		return protocol.ErrBodyTooLong
	}
	return c.conn.Write(ctx, websocket.MessageBinary, body)
}

func (c *wsConn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}

func (c *wsConn) RemoteAddr() string {
	return c.remote
}
