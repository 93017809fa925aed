package http

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
	"github.com/roomcast/roomcast/internal/config"
)

func startTestServer(t *testing.T) (*httptest.Server, *chat.Room) {
	t.Helper()

	disabledLogger := zerolog.New(nil)
	room := chat.NewRoom("10001", chat.DefaultHistoryCap, &disabledLogger)

	cfg := config.Default()
	cfg.HTTPAddr = ":0"
	cfg.ReadHeaderTimeout = time.Second

	server := NewServer(room, cfg, &disabledLogger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, room
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

// dialWS connects one WebSocket chat client and authenticates it, consuming
// the welcome and confirmation frames.
func dialWS(ctx context.Context, t *testing.T, ts *httptest.Server, name string) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial %s: %v", name, err)
	}
	t.Cleanup(func() { _ = conn.CloseNow() })

	readWS(ctx, t, conn) // welcome
	if err := conn.Write(ctx, websocket.MessageBinary, []byte(name)); err != nil {
		t.Fatalf("send name for %s: %v", name, err)
	}
	readWS(ctx, t, conn) // confirmation
	return conn
}

func readWS(ctx context.Context, t *testing.T, conn *websocket.Conn) string {
	t.Helper()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws read: %v", err)
	}
	return string(data)
}

func waitFor(t *testing.T, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
