package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State is a session's position in its lifecycle. The only transitions are
// Unauthenticated -> Authenticated -> Closed; nothing leaves Closed.
type State int

const (
	// StateUnauthenticated covers a fresh connection whose first frame
	// (the display name) has not arrived yet.
	StateUnauthenticated State = iota
	// StateAuthenticated means the display name is set and the session
	// is a room member.
	StateAuthenticated
	// StateClosed is terminal: the connection is gone and the session
	// has left the room.
	StateClosed
)

const (
	welcomeFormat = "Welcome to room [%s], please enter your username:"
	nameAccepted  = "---------- name accepted, start chatting ----------"
)

// Session owns exactly one connection and runs the protocol over it: one
// goroutine reads frames and feeds the state machine, a second one (spawned
// whenever the outbound queue goes from empty to non-empty) drains the
// queue back onto the wire. The queue is FIFO and unbounded; there is no
// backpressure signal to the room, and at most one write is ever in flight.
//
// Any read, decode, or write failure is fatal for the session, never for
// the service: the session leaves the room, closes its connection, and
// stays alive only as long as its own goroutines still reference it.
type Session struct {
	id   string
	room *Room
	conn Conn
	log  *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	state   State
	name    string
	queue   []string
	writing bool
}

// NewSession binds a freshly accepted connection to the room. The session
// gets a stable random ID; membership and logging key on it, never on
// pointer identity.
func NewSession(room *Room, conn Conn, logger *zerolog.Logger) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:     uuid.NewString(),
		room:   room,
		conn:   conn,
		log:    logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the stable per-connection identifier.
func (s *Session) ID() string {
	return s.id
}

// Name returns the display name, or "" before authentication.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// State reports the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done is closed once the session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Start greets the peer with the room's welcome prompt and launches the
// read loop. It returns immediately.
func (s *Session) Start() {
	s.log.Debug().
		Str("session_id", s.id).
		Str("remote", s.conn.RemoteAddr()).
		Msg("session started")

	s.Deliver(fmt.Sprintf(welcomeFormat, s.room.Name()))
	go s.readLoop()
}

// Deliver queues text as one outbound frame. Frames leave the wire in
// enqueue order; if no write is in flight the pump goroutine is started,
// otherwise the running pump picks the frame up. Closed sessions drop the
// text: a send racing a teardown is lost, not requeued.
func (s *Session) Deliver(text string) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, text)
	start := !s.writing
	if start {
		s.writing = true
	}
	s.mu.Unlock()

	if start {
		go s.writePump()
	}
}

// Close shuts the session down: terminal state, connection closed, room
// membership dropped. Idempotent and safe to call from the read loop, the
// write pump, and the shutdown path concurrently.
func (s *Session) Close() {
	s.closeWith(nil)
}

func (s *Session) readLoop() {
	for {
		body, err := s.conn.ReadBody(s.ctx)
		if err != nil {
			s.closeWith(err)
			return
		}
		if !s.handleFrame(body) {
			return
		}
	}
}

// handleFrame feeds one inbound body to the state machine. It reports
// whether the read loop should keep going.
func (s *Session) handleFrame(body []byte) bool {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()

	switch state {
	case StateUnauthenticated:
		// The first frame is the display name, verbatim: no
		// uniqueness check, no format validation.
		s.mu.Lock()
		s.name = string(body)
		s.state = StateAuthenticated
		s.mu.Unlock()

		s.Deliver(nameAccepted)
		s.room.Join(s)
		return true
	case StateAuthenticated:
		s.room.Deliver(string(body), s)
		return true
	default:
		return false
	}
}

func (s *Session) writePump() {
	for {
		s.mu.Lock()
		if s.state == StateClosed || len(s.queue) == 0 {
			s.writing = false
			s.mu.Unlock()
			return
		}
		head := s.queue[0]
		s.mu.Unlock()

		if err := s.conn.WriteBody(s.ctx, []byte(head)); err != nil {
			// Close first: Deliver must see StateClosed before the
			// writer flag drops, or it would spawn a second pump on
			// a dead connection.
			s.closeWith(fmt.Errorf("write frame: %w", err))
			s.mu.Lock()
			s.writing = false
			s.mu.Unlock()
			return
		}

		// Pop only after the write completed, so the head stays the
		// head until it is really on the wire.
		s.mu.Lock()
		s.queue = s.queue[1:]
		s.mu.Unlock()
	}
}

// closeWith performs the one-and-only transition into StateClosed and
// reports why. Late callers lose the race and return without effect.
func (s *Session) closeWith(err error) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	s.mu.Unlock()

	s.cancel()
	_ = s.conn.Close()
	s.room.Leave(s)

	switch {
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed), errors.Is(err, context.Canceled):
		s.log.Info().
			Str("session_id", s.id).
			Str("name", s.Name()).
			Msg("session closed")
	default:
		s.log.Warn().
			Err(err).
			Str("session_id", s.id).
			Str("name", s.Name()).
			Msg("session closed with error")
	}
}
