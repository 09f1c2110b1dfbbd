package transport

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/fleetgrid/battleship-go/internal/metrics"
	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/registry"
	"github.com/fleetgrid/battleship-go/internal/services/session"
)

// Config holds TCP server settings
type Config struct {
	// Addr is the listen address, e.g. ":5050"
	Addr string

	// IdleTimeout disconnects a client that sends nothing for this
	// long. Zero disables the deadline.
	IdleTimeout time.Duration
}

// Server accepts TCP connections and speaks the line protocol,
// bridging each connection into the session manager.
type Server struct {
	cfg      Config
	sessions *session.Manager
	logger   *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[*TCPConn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a new TCP server
func NewServer(cfg Config, sessions *session.Manager, logger *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		logger:   logger.With(slog.String("component", "tcp")),
		conns:    make(map[*TCPConn]struct{}),
	}
}

// Start begins accepting connections. It returns once the listener is
// bound; accepted connections are served on their own goroutines.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("tcp server listening", slog.String("addr", listener.Addr().String()))

	s.wg.Add(1)
	go s.acceptLoop(ctx, listener)
	return nil
}

// Addr returns the bound listen address, useful when Addr was ":0"
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting, closes every live connection, and waits
// for the handlers to drain.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

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

func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) {
	defer s.wg.Done()

	for {
		raw, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Warn("accept failed", slog.String("error", err.Error()))
			continue
		}

		conn := NewTCPConn(raw, s.logger)
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn, raw)
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		}()
	}
}

// serveConn runs the read loop for one connection: identify first,
// then commands until the client quits or drops.
func (s *Server) serveConn(ctx context.Context, conn *TCPConn, raw net.Conn) {
	defer func() { _ = conn.Close() }()

	s.logger.Info("connection accepted", slog.String("remote_addr", raw.RemoteAddr().String()))

	scanner := bufio.NewScanner(raw)
	scanner.Buffer(make([]byte, 1024), 4096)

	identity := s.identify(ctx, conn, raw, scanner)
	if identity == nil {
		return
	}
	defer s.sessions.OnDisconnect(ctx, identity, conn)

	for s.readLine(raw, scanner) {
		cmd, err := ParseLine(scanner.Text())
		if err != nil {
			s.sendError(conn, err)
			continue
		}

		metrics.CommandsTotal.WithLabelValues(commandLabel(cmd)).Inc()

		if _, ok := cmd.(model.IdentifyCommand); ok {
			s.sendError(conn, ErrBadArguments)
			continue
		}

		if err := s.sessions.OnCommand(ctx, identity, cmd); err != nil {
			s.sendError(conn, err)
			continue
		}

		if _, ok := cmd.(model.QuitCommand); ok {
			_ = conn.SendLine("BYE")
			return
		}
	}
}

// identify consumes lines until a valid IDENTIFY binds the connection,
// or the client gives up.
func (s *Server) identify(ctx context.Context, conn *TCPConn, raw net.Conn, scanner *bufio.Scanner) *registry.Identity {
	for s.readLine(raw, scanner) {
		cmd, err := ParseLine(scanner.Text())
		if err != nil {
			s.sendError(conn, err)
			continue
		}

		switch c := cmd.(type) {
		case model.IdentifyCommand:
			identity, err := s.sessions.OnConnect(ctx, c.Name, conn)
			if err != nil {
				s.sendError(conn, err)
				if errors.Is(err, model.ErrNameInUse) {
					// The name's owner is live; this connection has
					// nothing left to do
					return nil
				}
				continue
			}
			return identity
		case model.QuitCommand:
			_ = conn.SendLine("BYE")
			return nil
		default:
			s.sendError(conn, ErrIdentifyFirst)
		}
	}
	return nil
}

func (s *Server) readLine(raw net.Conn, scanner *bufio.Scanner) bool {
	if s.cfg.IdleTimeout > 0 {
		_ = raw.SetReadDeadline(time.Now().Add(s.cfg.IdleTimeout))
	}
	return scanner.Scan()
}

func (s *Server) sendError(conn *TCPConn, err error) {
	code := ErrorCode(err)
	metrics.CommandErrorsTotal.WithLabelValues(code).Inc()
	_ = conn.Send(model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Code: code, Detail: err.Error()},
	})
}

func commandLabel(cmd model.Command) string {
	switch cmd.(type) {
	case model.IdentifyCommand:
		return "identify"
	case model.PlaceShipCommand:
		return "place"
	case model.FireCommand:
		return "fire"
	case model.ChatCommand:
		return "chat"
	case model.QuitCommand:
		return "quit"
	default:
		return "unknown"
	}
}
