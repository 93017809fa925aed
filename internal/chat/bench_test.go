package chat

import (
	"context"
	"fmt"
	"testing"
)

// benchConn discards every frame. When frames is non-nil each completed
// write is signalled on it, which lets the benchmark loop pace itself on a
// single recipient.
type benchConn struct {
	frames chan struct{}
}

func (c *benchConn) ReadBody(ctx context.Context) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *benchConn) WriteBody(ctx context.Context, body []byte) error {
	if c.frames != nil {
		c.frames <- struct{}{}
	}
	return nil
}

func (c *benchConn) Close() error       { return nil }
func (c *benchConn) RemoteAddr() string { return "bench" }

func benchSession(room *Room, conn Conn, name string) *Session {
	s := NewSession(room, conn, nopLogger())
	s.mu.Lock()
	s.name = name
	s.state = StateAuthenticated
	s.mu.Unlock()
	room.Join(s)
	return s
}

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	room := NewRoom("bench", DefaultHistoryCap, nopLogger())

	sender := benchSession(room, &benchConn{}, "sender")
	for i := 1; i < recipients; i++ {
		benchSession(room, &benchConn{}, fmt.Sprintf("c%d", i))
	}

	// The paced recipient joins last so no later join notices reach it
	// before the loop starts counting.
	target := &benchConn{frames: make(chan struct{}, 1)}
	benchSession(room, target, "c0")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		room.Deliver("payload", sender)
		<-target.frames
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
