package transport

import (
	"log/slog"
	"net"
	"sync"

	"github.com/fleetgrid/battleship-go/internal/model"
	"github.com/fleetgrid/battleship-go/internal/registry"
)

// sendBufferSize is the per-connection outbound line buffer. A client
// that stops reading loses events once the buffer fills; the
// authoritative state is replayed on reconnect anyway.
const sendBufferSize = 64

// TCPConn wraps one accepted TCP connection. Writes go through a
// buffered channel drained by a single write pump, so event producers
// never block on a slow client.
type TCPConn struct {
	raw    net.Conn
	logger *slog.Logger

	send      chan string
	done      chan struct{}
	closeOnce sync.Once
}

var _ registry.Conn = (*TCPConn)(nil)

// NewTCPConn wraps an accepted connection and starts its write pump
func NewTCPConn(raw net.Conn, logger *slog.Logger) *TCPConn {
	c := &TCPConn{
		raw:    raw,
		logger: logger.With(slog.String("remote_addr", raw.RemoteAddr().String())),
		send:   make(chan string, sendBufferSize),
		done:   make(chan struct{}),
	}
	go c.writePump()
	return c
}

// Send encodes and queues an event for delivery. Events are dropped
// when the client's buffer is full.
func (c *TCPConn) Send(event model.Event) error {
	return c.SendLine(EncodeEvent(event))
}

// SendLine queues a raw wire line for delivery
func (c *TCPConn) SendLine(line string) error {
	select {
	case c.send <- line:
		return nil
	case <-c.done:
		return net.ErrClosed
	default:
		c.logger.Warn("outbound event dropped - client buffer full")
		return nil
	}
}

// Close shuts the connection down. Safe to call more than once.
func (c *TCPConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.raw.Close()
}

func (c *TCPConn) writePump() {
	for {
		select {
		case line := <-c.send:
			if _, err := c.raw.Write([]byte(line + "\n")); err != nil {
				c.logger.Debug("write failed", slog.String("error", err.Error()))
				_ = c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}
