package chat

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var errInjectedWrite = errors.New("injected write failure")

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestRoom() *Room {
	return NewRoom("10001", DefaultHistoryCap, nopLogger())
}

// waitFor polls cond until it holds or the deadline passes.
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

// settle gives background pumps a moment to do anything they were wrongly
// going to do; used before asserting that something did NOT happen.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

type readResult struct {
	body []byte
	err  error
}

// fakeConn is an in-memory Conn: reads are fed by the test, writes are
// recorded. writeDelay and failWrites let tests pin down ordering and
// failure behavior.
type fakeConn struct {
	reads     chan readResult
	closed    chan struct{}
	closeOnce sync.Once

	writeDelay time.Duration
	failWrites atomic.Bool

	mu          sync.Mutex
	writes      []string
	inflight    int
	maxInflight int
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		reads:  make(chan readResult, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) queueRead(body []byte) {
	c.reads <- readResult{body: body}
}

func (c *fakeConn) queueReadErr(err error) {
	c.reads <- readResult{err: err}
}

func (c *fakeConn) ReadBody(ctx context.Context) ([]byte, error) {
	select {
	case r := <-c.reads:
		return r.body, r.err
	case <-c.closed:
		return nil, net.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *fakeConn) WriteBody(ctx context.Context, body []byte) error {
	if c.failWrites.Load() {
		return errInjectedWrite
	}
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}

	c.mu.Lock()
	c.inflight++
	if c.inflight > c.maxInflight {
		c.maxInflight = c.inflight
	}
	c.mu.Unlock()

	if c.writeDelay > 0 {
		time.Sleep(c.writeDelay)
	}

	c.mu.Lock()
	c.inflight--
	c.writes = append(c.writes, string(body))
	c.mu.Unlock()
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string {
	return "fake:0"
}

func (c *fakeConn) Writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.writes...)
}

func (c *fakeConn) WriteCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeConn) MaxInflight() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxInflight
}

// joinedSession starts a session on room, authenticates it with name, and
// waits until the room registered it.
func joinedSession(t *testing.T, room *Room, name string) (*Session, *fakeConn) {
	t.Helper()

	before := room.MemberCount()

	fc := newFakeConn()
	s := NewSession(room, fc, nopLogger())
	s.Start()
	fc.queueRead([]byte(name))

	waitFor(t, func() bool { return room.MemberCount() == before+1 }, name+" to join")
	return s, fc
}

func countOccurrences(lines []string, want string) int {
	n := 0
	for _, l := range lines {
		if l == want {
			n++
		}
	}
	return n
}

func containsLine(lines []string, want string) bool {
	return countOccurrences(lines, want) > 0
}
