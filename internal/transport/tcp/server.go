package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
)

// Server accepts protocol connections and binds each one to a Session on
// the shared room.
type Server struct {
	addr string
	room *chat.Room
	log  *zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	sessions map[string]*chat.Session
	closed   bool

	wg sync.WaitGroup
}

// NewServer builds a TCP server for the given protocol address.
func NewServer(addr string, room *chat.Room, logger *zerolog.Logger) *Server {
	return &Server{
		addr:     addr,
		room:     room,
		log:      logger,
		sessions: make(map[string]*chat.Session),
	}
}

// Listen binds the protocol port. It must be called before Serve.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Info().Str("addr", listener.Addr().String()).Msg("tcp listener started")
	return nil
}

// Serve accepts connections until the listener is closed. Accept errors
// other than net.ErrClosed are logged and accepting continues.
func (s *Server) Serve() error {
	s.mu.Lock()
	listener := s.listener
	s.mu.Unlock()
	if listener == nil {
		return errors.New("serve called before listen")
	}

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}
		s.handle(conn)
	}
}

// Addr reports the bound listener address, useful with ":0" configs.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops accepting, closes every live session, and waits for them
// to wind down or for ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	listener := s.listener
	open := make([]*chat.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	if listener != nil {
		_ = listener.Close()
	}
	for _, sess := range open {
		sess.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) handle(conn net.Conn) {
	sess := chat.NewSession(s.room, NewConn(conn), s.log)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.sessions[sess.ID()] = sess
	s.mu.Unlock()

	s.log.Debug().
		Str("session_id", sess.ID()).
		Str("remote", conn.RemoteAddr().String()).
		Msg("connection accepted")

	sess.Start()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-sess.Done()
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		s.mu.Unlock()
	}()
}
