// Package app wires the room and transport layers together.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roomcast/roomcast/internal/chat"
	"github.com/roomcast/roomcast/internal/config"
	transporthttp "github.com/roomcast/roomcast/internal/transport/http"
	transporttcp "github.com/roomcast/roomcast/internal/transport/tcp"
)

// App runs the chat service: one shared room, the TCP protocol listener,
// and the HTTP server with the WebSocket ingress.
type App struct {
	cfg        config.Config
	room       *chat.Room
	tcpServer  *transporttcp.Server
	httpServer *stdhttp.Server
	log        *zerolog.Logger

	mu       sync.Mutex
	httpAddr string
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) *App {
	room := chat.NewRoom(cfg.RoomName, cfg.HistoryLimit, logger)

	return &App{
		cfg:        cfg,
		room:       room,
		tcpServer:  transporttcp.NewServer(cfg.ListenAddr, room, logger),
		httpServer: transporthttp.NewServer(room, cfg, logger),
		log:        logger,
	}
}

// TCPAddr reports the bound protocol address once Run has started.
func (a *App) TCPAddr() string {
	return a.tcpServer.Addr()
}

// HTTPAddr reports the bound HTTP address once Run has started.
func (a *App) HTTPAddr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.httpAddr
}

// Run binds both listeners and blocks until context cancellation or a fatal
// server error. Shutdown closes the TCP listener and its sessions, stops the
// HTTP server, then closes any remaining sessions through the room.
func (a *App) Run(ctx context.Context) error {
	if err := a.tcpServer.Listen(); err != nil {
		return err
	}

	httpLn, err := net.Listen("tcp", a.cfg.HTTPAddr)
	if err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		_ = a.tcpServer.Shutdown(shutdownCtx)
		return fmt.Errorf("listen %s: %w", a.cfg.HTTPAddr, err)
	}
	a.mu.Lock()
	a.httpAddr = httpLn.Addr().String()
	a.mu.Unlock()

	serverErr := make(chan error, 2)
	go func() {
		if err := a.tcpServer.Serve(); err != nil {
			serverErr <- fmt.Errorf("tcp server: %w", err)
			return
		}
		serverErr <- nil
	}()
	go func() {
		if err := a.httpServer.Serve(httpLn); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- fmt.Errorf("http server: %w", err)
			return
		}
		serverErr <- nil
	}()

	a.log.Info().
		Str("tcp_addr", a.TCPAddr()).
		Str("http_addr", a.HTTPAddr()).
		Str("room", a.room.Name()).
		Msg("server started")

	select {
	case err := <-serverErr:
		a.shutdown()
		return err
	case <-ctx.Done():
		a.shutdown()
		return nil
	}
}

func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.log.Info().Msg("shutting down")

	if err := a.tcpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("tcp shutdown")
	}
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.log.Warn().Err(err).Msg("http shutdown")
	}
	// WebSocket sessions are not owned by either listener; close them
	// through the room.
	a.room.CloseAll()
}
