// Package link carries protocol messages between the capture and playback
// hosts. Two transports are provided: a websocket link exchanging JSON text
// messages, and a raw TCP link exchanging length-prefixed frames.
package link

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

// DefaultDialTimeout bounds a single stream connect attempt.
const DefaultDialTimeout = 3 * time.Second

// DefaultWriteTimeout bounds a single frame write so a peer that stops
// reading cannot stall the sender indefinitely.
const DefaultWriteTimeout = 5 * time.Second

// StreamConn wraps one TCP connection exchanging length-prefixed envelopes.
type StreamConn struct {
	conn   net.Conn
	reader *bufio.Reader
	logger *slog.Logger
	raw    log.RawLogger

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// NewStreamConn wraps an established connection.
func NewStreamConn(conn net.Conn, logger *slog.Logger, raw log.RawLogger) *StreamConn {
	return &StreamConn{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		logger:       logger,
		raw:          raw,
		writeTimeout: DefaultWriteTimeout,
	}
}

// SetWriteTimeout overrides the per-write deadline.
func (c *StreamConn) SetWriteTimeout(d time.Duration) {
	c.writeMu.Lock()
	c.writeTimeout = d
	c.writeMu.Unlock()
}

// Dial connects to a stream peer with a bounded connect attempt and disables
// Nagle so small input frames leave immediately.
func Dial(ctx context.Context, addr string, logger *slog.Logger, raw log.RawLogger) (*StreamConn, error) {
	d := &net.Dialer{Timeout: DefaultDialTimeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			logger.Debug("failed to set TCP_NODELAY", "error", err)
		}
	}
	return NewStreamConn(conn, logger, raw), nil
}

// RemoteAddr returns the peer address.
func (c *StreamConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// ReadEnvelope reads the next well-formed envelope. Messages that frame
// correctly but fail to decode are logged and skipped; framing and transport
// errors end the session and are returned (io.EOF on clean close).
func (c *StreamConn) ReadEnvelope() (*protocol.Envelope, error) {
	for {
		payload, err := protocol.ReadFrame(c.reader)
		if err != nil {
			return nil, err
		}
		c.raw.Log(true, payload)

		env, err := protocol.DecodeEnvelope(payload)
		if err != nil {
			var decErr *protocol.DecodeError
			if errors.As(err, &decErr) {
				c.logger.Warn("dropping malformed message", "error", err, "peer", c.RemoteAddr())
				continue
			}
			return nil, err
		}
		return env, nil
	}
}

// WriteEnvelope frames and sends one envelope.
func (c *StreamConn) WriteEnvelope(env *protocol.Envelope) error {
	frame, err := protocol.EncodeFrame(env)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.raw.Log(false, frame[4:])
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write envelope: %w", err)
	}
	return nil
}

// WriteBatch frames and sends one input batch.
func (c *StreamConn) WriteBatch(b *protocol.InputBatch) error {
	frame, err := protocol.EncodeFrame(b)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.raw.Log(false, frame[4:])
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if _, err := c.conn.Write(frame); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *StreamConn) Close() error {
	return c.conn.Close()
}

// StreamServer accepts stream peers and hands each connection to a handler.
type StreamServer struct {
	addr    string
	ln      net.Listener
	logger  *slog.Logger
	raw     log.RawLogger
	handler func(*StreamConn)
}

// NewStreamServer creates a server; handler runs once per accepted
// connection on its own goroutine.
func NewStreamServer(addr string, logger *slog.Logger, raw log.RawLogger, handler func(*StreamConn)) *StreamServer {
	return &StreamServer{addr: addr, logger: logger, raw: raw, handler: handler}
}

// Start listens on the configured address and begins accepting peers.
func (s *StreamServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	s.logger.Info("stream link listening", "addr", s.addr)
	go s.serve()
	return nil
}

// Addr returns the bound listen address, useful when addr used port 0.
func (s *StreamServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Close stops accepting. In-flight handlers finish on their own.
func (s *StreamServer) Close() {
	if s.ln != nil {
		_ = s.ln.Close()
	}
}

func (s *StreamServer) serve() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.logger.Info("stream link stopped")
				return
			}
			s.logger.Info("stream accept error", "error", err)
			return
		}
		if tcpConn, ok := c.(*net.TCPConn); ok {
			_ = tcpConn.SetNoDelay(true)
		}
		s.logger.Info("stream peer connected", "peer", c.RemoteAddr())
		go s.handler(NewStreamConn(c, s.logger, s.raw))
	}
}
