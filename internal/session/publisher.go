package session

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/drazoxXD/steamdeck-Controls/capture"
	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

// Publisher is the stream-variant capture loop: playback hosts connect in,
// receive the controller roster, then full-state snapshots whenever the
// folded state changes. Pings are answered with Pongs.
type Publisher struct {
	source  capture.Source
	logger  *slog.Logger
	tracker StateTracker

	mu    sync.Mutex
	conns map[*link.StreamConn]struct{}
}

// NewPublisher wires a source to the stream server handler.
func NewPublisher(source capture.Source, logger *slog.Logger) *Publisher {
	return &Publisher{
		source: source,
		logger: logger,
		conns:  make(map[*link.StreamConn]struct{}),
	}
}

// HandleConn serves one playback peer. It sends the roster, then answers
// pings until the peer goes away. Intended as a link.StreamServer handler.
func (p *Publisher) HandleConn(conn *link.StreamConn) {
	defer func() {
		p.mu.Lock()
		delete(p.conns, conn)
		p.mu.Unlock()
		_ = conn.Close()
		p.logger.Info("playback peer left", "peer", conn.RemoteAddr())
	}()

	if err := conn.WriteEnvelope(&protocol.Envelope{ControllerList: p.roster()}); err != nil {
		p.logger.Warn("roster send failed", "error", err, "peer", conn.RemoteAddr())
		return
	}

	p.mu.Lock()
	p.conns[conn] = struct{}{}
	p.mu.Unlock()

	for {
		env, err := conn.ReadEnvelope()
		if err != nil {
			if err != io.EOF {
				p.logger.Warn("peer read failed", "error", err, "peer", conn.RemoteAddr())
			}
			return
		}
		if env.Ping {
			if err := conn.WriteEnvelope(protocol.NewPong()); err != nil {
				p.logger.Warn("pong send failed", "error", err, "peer", conn.RemoteAddr())
				return
			}
		}
	}
}

// Run folds source events and broadcasts state snapshots once per tick while
// the state is dirty.
func (p *Publisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	events := p.source.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			p.handleSourceEvent(ev)

		case <-ticker.C:
			if !p.tracker.Dirty() {
				continue
			}
			state := p.tracker.Snapshot(protocol.Now())
			p.broadcast(&protocol.Envelope{ControllerState: &state})
		}
	}
}

func (p *Publisher) handleSourceEvent(ev capture.Event) {
	switch ev.Kind {
	case capture.Connected, capture.Disconnected:
		p.broadcast(&protocol.Envelope{ControllerList: p.roster()})
		if ev.Kind == capture.Disconnected && !p.anyConnected() {
			// The held controls would stay frozen otherwise; fold releases
			// so the next tick broadcasts a neutral state.
			for _, e := range input.ReleaseAll() {
				p.tracker.Apply(e)
			}
		}
	case capture.ButtonPressed, capture.ButtonReleased:
		for _, e := range input.Normalize(input.RawEvent{
			Kind:    input.RawButton,
			Button:  ev.Button,
			Pressed: ev.Kind == capture.ButtonPressed,
		}) {
			p.tracker.Apply(e)
		}
	case capture.AxisChanged:
		for _, e := range input.Normalize(input.RawEvent{
			Kind:  input.RawAxis,
			Axis:  ev.Axis,
			Value: ev.Value,
		}) {
			p.tracker.Apply(e)
		}
	}
}

func (p *Publisher) roster() []protocol.ControllerInfo {
	devices := p.source.Devices()
	infos := make([]protocol.ControllerInfo, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, protocol.ControllerInfo{
			Name:      d.Name,
			UUID:      d.ID,
			VendorID:  d.VendorID,
			ProductID: d.ProductID,
			Connected: d.Connected,
		})
	}
	return infos
}

func (p *Publisher) anyConnected() bool {
	for _, d := range p.source.Devices() {
		if d.Connected {
			return true
		}
	}
	return false
}

func (p *Publisher) broadcast(env *protocol.Envelope) {
	p.mu.Lock()
	conns := make([]*link.StreamConn, 0, len(p.conns))
	for c := range p.conns {
		conns = append(conns, c)
	}
	p.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteEnvelope(env); err != nil {
			// A peer that stops reading hits the write deadline; drop it so
			// it cannot slow the remaining peers on every tick. Closing the
			// conn makes its HandleConn read loop exit and deregister.
			p.logger.Warn("broadcast failed, dropping peer", "error", err, "peer", c.RemoteAddr())
			_ = c.Close()
		}
	}
}
