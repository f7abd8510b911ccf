package link

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

// DefaultHandshakeTimeout bounds a websocket connect attempt.
const DefaultHandshakeTimeout = 3 * time.Second

// WSConn wraps one websocket connection carrying JSON text messages.
type WSConn struct {
	conn   *websocket.Conn
	logger *slog.Logger
	raw    log.RawLogger

	writeMu      sync.Mutex
	writeTimeout time.Duration
}

// SetWriteTimeout overrides the per-write deadline.
func (c *WSConn) SetWriteTimeout(d time.Duration) {
	c.writeMu.Lock()
	c.writeTimeout = d
	c.writeMu.Unlock()
}

// DialWS connects to a websocket playback host at url (ws://host:port/).
func DialWS(ctx context.Context, url string, logger *slog.Logger, raw log.RawLogger) (*WSConn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: DefaultHandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	if resp != nil {
		_ = resp.Body.Close()
	}
	return &WSConn{conn: conn, logger: logger, raw: raw, writeTimeout: DefaultWriteTimeout}, nil
}

// RemoteAddr returns the peer address.
func (c *WSConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// ReadBatch reads the next well-formed input batch. Malformed text messages
// are logged and skipped; transport errors and non-text messages end the
// session.
func (c *WSConn) ReadBatch() (*protocol.InputBatch, error) {
	for {
		msgType, payload, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if msgType != websocket.TextMessage {
			c.logger.Warn("dropping non-text message", "type", msgType, "peer", c.RemoteAddr())
			continue
		}
		c.raw.Log(true, payload)

		batch, err := protocol.DecodeBatch(payload)
		if err != nil {
			c.logger.Warn("dropping malformed batch", "error", err, "peer", c.RemoteAddr())
			continue
		}
		return batch, nil
	}
}

// WriteBatch sends one batch as a single text message.
func (c *WSConn) WriteBatch(b *protocol.InputBatch) error {
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.raw.Log(false, payload)
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (c *WSConn) Close() error {
	return c.conn.Close()
}

// WSServer accepts websocket capture peers at / and hands each connection to
// a handler.
type WSServer struct {
	addr    string
	ln      net.Listener
	srv     *http.Server
	logger  *slog.Logger
	raw     log.RawLogger
	handler func(*WSConn)

	upgrader websocket.Upgrader
}

// NewWSServer creates a websocket server; handler runs once per accepted
// connection on its own goroutine.
func NewWSServer(addr string, logger *slog.Logger, raw log.RawLogger, handler func(*WSConn)) *WSServer {
	return &WSServer{
		addr:    addr,
		logger:  logger,
		raw:     raw,
		handler: handler,
		upgrader: websocket.Upgrader{
			// The link carries no credentials and is meant for trusted
			// networks; accept any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Start listens on the configured address and begins accepting peers.
func (s *WSServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleUpgrade)
	s.srv = &http.Server{Handler: mux}

	s.logger.Info("websocket link listening", "addr", s.addr)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Info("websocket link stopped", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound listen address, useful when addr used port 0.
func (s *WSServer) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

// Close stops accepting. In-flight handlers finish on their own.
func (s *WSServer) Close() {
	if s.srv != nil {
		_ = s.srv.Close()
	}
}

func (s *WSServer) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err, "peer", r.RemoteAddr)
		return
	}
	s.logger.Info("websocket peer connected", "peer", conn.RemoteAddr())
	go s.handler(&WSConn{conn: conn, logger: s.logger, raw: s.raw, writeTimeout: DefaultWriteTimeout})
}
