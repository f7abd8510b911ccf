package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
	"github.com/drazoxXD/steamdeck-Controls/virtpad"
)

// Playback folds received input into the virtual pad. One Playback serves
// every session; each session is otherwise independent.
type Playback struct {
	pad    *virtpad.Reconciler
	stats  *Stats
	logger *slog.Logger

	mu     sync.Mutex
	roster []protocol.ControllerInfo
}

// NewPlayback wires the reconciler and stats sinks.
func NewPlayback(pad *virtpad.Reconciler, stats *Stats, logger *slog.Logger) *Playback {
	return &Playback{pad: pad, stats: stats, logger: logger}
}

// Roster returns the last controller list announced by the capture host.
func (p *Playback) Roster() []protocol.ControllerInfo {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]protocol.ControllerInfo, len(p.roster))
	copy(out, p.roster)
	return out
}

// HandleWSConn serves one websocket capture peer until it disconnects, then
// returns the pad to neutral. Intended as a link.WSServer handler.
func (p *Playback) HandleWSConn(conn *link.WSConn) {
	p.stats.ClientConnected()
	defer func() {
		p.stats.ClientDisconnected()
		_ = conn.Close()
		p.neutral()
		p.logger.Info("capture peer left", "peer", conn.RemoteAddr())
	}()

	for {
		batch, err := conn.ReadBatch()
		if err != nil {
			if !isSessionEnd(err) {
				p.logger.Warn("session read failed", "error", err, "peer", conn.RemoteAddr())
			}
			return
		}
		p.applyBatch(batch)
	}
}

// HandleStreamConn serves one stream session: roster updates are stored,
// pings answered, state snapshots folded into the pad.
func (p *Playback) HandleStreamConn(conn *link.StreamConn) {
	p.stats.ClientConnected()
	defer func() {
		p.stats.ClientDisconnected()
		_ = conn.Close()
		p.neutral()
	}()

	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if !isSessionEnd(err) {
				p.logger.Warn("session read failed", "error", err, "peer", conn.RemoteAddr())
			}
			return
		}
		switch {
		case env.Ping:
			if err := conn.WriteEnvelope(protocol.NewPong()); err != nil {
				p.logger.Warn("pong send failed", "error", err)
				return
			}
		case env.Pong:
			// Latency probes are one-sided; nothing to do.
		case env.ControllerList != nil:
			p.mu.Lock()
			p.roster = env.ControllerList
			p.mu.Unlock()
			p.logger.Info("controller roster updated", "controllers", len(env.ControllerList))
		case env.ControllerState != nil:
			delay := protocol.Delay(protocol.Now(), &protocol.InputBatch{Timestamp: env.ControllerState.Timestamp})
			p.stats.Observe(ObservedEvent{Name: "state", DelayMS: delay})
			p.pad.ApplyState(env.ControllerState)
			if err := p.pad.Flush(); err != nil {
				p.logger.Warn("pad flush failed", "error", err)
			}
		}
	}
}

// RunStreamClient dials the capture host and serves the session, retrying
// with a fixed backoff until ctx is cancelled. This is the deployment where
// the playback host connects out.
func (p *Playback) RunStreamClient(ctx context.Context, addr string, logger *slog.Logger, raw log.RawLogger) error {
	for {
		conn, err := link.Dial(ctx, addr, logger, raw)
		if err != nil {
			logger.Warn("connect failed", "addr", addr, "error", err)
		} else {
			logger.Info("connected to capture host", "addr", addr)
			p.HandleStreamConn(conn)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(ReconnectBackoff):
		}
	}
}

// applyBatch measures delay, folds every event into the pad and flushes the
// resulting frame once.
func (p *Playback) applyBatch(batch *protocol.InputBatch) {
	delay := protocol.Delay(protocol.Now(), batch)

	for _, ev := range batch.ButtonEvents {
		p.stats.Observe(ObservedEvent{Name: ev.Button, Digital: true, Pressed: ev.Pressed, DelayMS: delay})
		p.pad.ApplyButton(ev.Button, ev.Pressed)
	}
	for _, ev := range batch.AxisEvents {
		p.stats.Observe(ObservedEvent{Name: ev.Axis, Value: ev.Value, DelayMS: delay})
		p.pad.ApplyAxis(ev.Axis, ev.Value)
	}

	if err := p.pad.Flush(); err != nil {
		p.logger.Warn("pad flush failed", "error", err)
	}
}

// neutral releases every control when a session ends so the virtual pad is
// not left mid-press.
func (p *Playback) neutral() {
	p.pad.Reset()
	if err := p.pad.Flush(); err != nil {
		p.logger.Warn("neutral flush failed", "error", err)
	}
}

func isSessionEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
