package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fleetgrid/battleship-go/internal/metrics"
	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/registry"
	"github.com/fleetgrid/battleship-go/internal/services/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The wire protocol carries no credentials and browser clients
	// are served from anywhere
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSConn adapts one websocket connection to the line protocol. Each
// text message is one wire line in either direction.
type WSConn struct {
	ws     *websocket.Conn
	logger *slog.Logger

	send      chan string
	done      chan struct{}
	closeOnce sync.Once
}

var _ registry.Conn = (*WSConn)(nil)

func newWSConn(ws *websocket.Conn, logger *slog.Logger) *WSConn {
	c := &WSConn{
		ws:     ws,
		logger: logger.With(slog.String("remote_addr", ws.RemoteAddr().String())),
		send:   make(chan string, sendBufferSize),
		done:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send encodes and queues an event, dropping when the buffer is full
func (c *WSConn) Send(event model.Event) error {
	return c.sendLine(EncodeEvent(event))
}

func (c *WSConn) sendLine(line string) error {
	select {
	case c.send <- line:
		return nil
	case <-c.done:
		return websocket.ErrCloseSent
	default:
		c.logger.Warn("outbound event dropped - client buffer full")
		return nil
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *WSConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.ws.Close()
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case line := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, []byte(line)); err != nil {
				_ = c.Close()
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// WSHandler upgrades HTTP requests and bridges them into the session
// manager, speaking the same line protocol as the TCP listener.
type WSHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(sessions *session.Manager, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "ws")),
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	conn := newWSConn(ws, h.logger)
	defer func() { _ = conn.Close() }()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	h.logger.Info("websocket connected", slog.String("remote_addr", ws.RemoteAddr().String()))

	ctx := r.Context()

	identity := h.identify(ctx, conn)
	if identity == nil {
		return
	}
	defer h.sessions.OnDisconnect(ctx, identity, conn)

	for {
		line, ok := h.readLine(conn)
		if !ok {
			return
		}

		cmd, err := ParseLine(line)
		if err != nil {
			h.sendError(conn, err)
			continue
		}

		metrics.CommandsTotal.WithLabelValues(commandLabel(cmd)).Inc()

		if _, ok := cmd.(model.IdentifyCommand); ok {
			h.sendError(conn, ErrBadArguments)
			continue
		}

		if err := h.sessions.OnCommand(ctx, identity, cmd); err != nil {
			h.sendError(conn, err)
			continue
		}

		if _, ok := cmd.(model.QuitCommand); ok {
			_ = conn.sendLine("BYE")
			return
		}
	}
}

func (h *WSHandler) identify(ctx context.Context, conn *WSConn) *registry.Identity {
	for {
		line, ok := h.readLine(conn)
		if !ok {
			return nil
		}

		cmd, err := ParseLine(line)
		if err != nil {
			h.sendError(conn, err)
			continue
		}

		switch c := cmd.(type) {
		case model.IdentifyCommand:
			identity, err := h.sessions.OnConnect(ctx, c.Name, conn)
			if err != nil {
				h.sendError(conn, err)
				if errors.Is(err, model.ErrNameInUse) {
					return nil
				}
				continue
			}
			return identity
		case model.QuitCommand:
			_ = conn.sendLine("BYE")
			return nil
		default:
			h.sendError(conn, ErrIdentifyFirst)
		}
	}
}

func (h *WSHandler) readLine(conn *WSConn) (string, bool) {
	_, data, err := conn.ws.ReadMessage()
	if err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			h.logger.Debug("websocket read failed", slog.String("error", err.Error()))
		}
		return "", false
	}
	return string(data), true
}

func (h *WSHandler) sendError(conn *WSConn, err error) {
	code := ErrorCode(err)
	metrics.CommandErrorsTotal.WithLabelValues(code).Inc()
	_ = conn.Send(model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Code: code, Detail: err.Error()},
	})
}
