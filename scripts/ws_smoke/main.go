package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "tester", "display name for the sending connection")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// The room never echoes to the sender, so a second connection observes
	// the relay.
	receiver, err := join(ctx, *addr, *name+"-observer")
	if err != nil {
		return err
	}
	defer receiver.Close(websocket.StatusNormalClosure, "bye")

	sender, err := join(ctx, *addr, *name)
	if err != nil {
		return err
	}
	defer sender.Close(websocket.StatusNormalClosure, "bye")

	if err := sender.Write(ctx, websocket.MessageBinary, []byte(*text)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	want := fmt.Sprintf("%s says: %s", *name, *text)
	for {
		_, data, err := receiver.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		line := string(data)
		fmt.Printf("Received: %s\n", line)
		if line == want {
			return nil
		}
	}
}

// join dials the server and completes the naming handshake.
func join(ctx context.Context, addr, name string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	if _, _, err := conn.Read(ctx); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("read greeting: %w", err)
	}
	if err := conn.Write(ctx, websocket.MessageBinary, []byte(name)); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("send name: %w", err)
	}
	if _, _, err := conn.Read(ctx); err != nil {
		_ = conn.CloseNow()
		return nil, fmt.Errorf("read confirmation: %w", err)
	}
	return conn, nil
}
