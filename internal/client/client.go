// Package client implements the framed-protocol chat client used by the
// terminal UI.
package client

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/roomcast/roomcast/internal/transport/tcp"
)

// Client is a connected chat peer. Incoming lines surface on Lines; the
// channel closes when the connection ends.
type Client struct {
	conn  *tcp.Conn
	lines chan string
	done  chan struct{}

	closeOnce sync.Once
}

// Dial connects to a chat server and starts the receive loop.
func Dial(addr string) (*Client, error) {
	raw, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	c := &Client{
		conn:  tcp.NewConn(raw),
		lines: make(chan string, 16),
		done:  make(chan struct{}),
	}
	go c.receive()
	return c, nil
}

// Send transmits text as a single frame. Oversized bodies are rejected
// before they reach the wire.
func (c *Client) Send(text string) error {
	return c.conn.WriteBody(context.Background(), []byte(text))
}

// Lines returns the channel of incoming server lines.
func (c *Client) Lines() <-chan string {
	return c.lines
}

// Close terminates the connection. The receive loop winds down and closes
// Lines. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.conn.Close()
	})
	return err
}

func (c *Client) receive() {
	defer close(c.lines)
	for {
		body, err := c.conn.ReadBody(context.Background())
		if err != nil {
			return
		}
		select {
		case c.lines <- string(body):
		case <-c.done:
			return
		}
	}
}
