package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drazoxXD/steamdeck-Controls/capture"
	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

const (
	// TickInterval is the capture batching cadence.
	TickInterval = 16 * time.Millisecond
	// ReconnectBackoff is the fixed wait before retrying a failed connect.
	ReconnectBackoff = 5 * time.Second
)

// Sender delivers batches to the playback host.
type Sender interface {
	SendBatch(*protocol.InputBatch) error
	Close() error
}

// Connector establishes a Sender. A single attempt; backoff is the
// capturer's job.
type Connector func(ctx context.Context) (Sender, error)

// Capturer drains a controller source, normalizes its events and ships one
// batch per tick while connected.
type Capturer struct {
	source  capture.Source
	connect Connector
	logger  *slog.Logger

	connectReq    atomic.Bool
	disconnectReq atomic.Bool

	mu     sync.Mutex
	state  ConnState
	active string

	nextControllerID uint32
	controllerIDs    map[string]uint32
}

// NewCapturer wires a source to a connector.
func NewCapturer(source capture.Source, connect Connector, logger *slog.Logger) *Capturer {
	return &Capturer{
		source:        source,
		connect:       connect,
		logger:        logger,
		controllerIDs: make(map[string]uint32),
	}
}

// RequestConnect asks the loop to establish the link. Edge-triggered: the
// request is consumed exactly once.
func (c *Capturer) RequestConnect() {
	c.connectReq.Store(true)
}

// RequestDisconnect asks the loop to drop the link.
func (c *Capturer) RequestDisconnect() {
	c.disconnectReq.Store(true)
}

// State returns the current link state.
func (c *Capturer) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Capturer) setState(s ConnState) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()
	if prev != s {
		c.logger.Info("link state", "state", s.String())
	}
}

// Run drives the capture loop until ctx is cancelled. It connects
// immediately and keeps retrying with a fixed backoff while the link is
// down.
func (c *Capturer) Run(ctx context.Context) error {
	c.RequestConnect()

	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	var (
		sender  Sender
		retryAt time.Time
		pending []input.Event
	)
	defer func() {
		if sender != nil {
			_ = sender.Close()
		}
		c.setState(Disconnected)
	}()

	events := c.source.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			pending = append(pending, c.handleSourceEvent(ev)...)

		case <-ticker.C:
			if c.disconnectReq.CompareAndSwap(true, false) {
				if sender != nil {
					_ = sender.Close()
					sender = nil
				}
				c.setState(Disconnected)
			}

			wantConnect := c.connectReq.CompareAndSwap(true, false)
			if !wantConnect && c.State() == ConnectFailed && !retryAt.IsZero() && time.Now().After(retryAt) {
				wantConnect = true
			}
			if wantConnect && sender == nil {
				c.setState(Connecting)
				s, err := c.connect(ctx)
				if err != nil {
					c.logger.Warn("connect failed", "error", err)
					c.setState(ConnectFailed)
					retryAt = time.Now().Add(ReconnectBackoff)
				} else {
					sender = s
					retryAt = time.Time{}
					c.setState(Connected)
				}
			}

			if sender == nil {
				// Nothing to deliver to; drop this tick's events so a stale
				// burst is not replayed after reconnecting.
				pending = pending[:0]
				continue
			}

			batch := c.buildBatch(pending)
			pending = pending[:0]
			if batch.Empty() {
				continue
			}
			if err := sender.SendBatch(batch); err != nil {
				c.logger.Warn("send failed", "error", err)
				_ = sender.Close()
				sender = nil
				c.setState(ConnectFailed)
				retryAt = time.Now().Add(ReconnectBackoff)
			}
		}
	}
}

// handleSourceEvent turns one source event into normalized events. Hotplug
// events adjust the active controller and yield nothing.
func (c *Capturer) handleSourceEvent(ev capture.Event) []input.Event {
	switch ev.Kind {
	case capture.Connected:
		c.mu.Lock()
		if _, seen := c.controllerIDs[ev.Device]; !seen {
			c.controllerIDs[ev.Device] = c.nextControllerID
			c.nextControllerID++
		}
		if c.active == "" {
			c.active = ev.Device
		}
		c.mu.Unlock()
		return nil
	case capture.Disconnected:
		c.mu.Lock()
		if c.active == ev.Device {
			c.active = ""
			for _, d := range c.source.Devices() {
				if d.ID != ev.Device {
					c.active = d.ID
					break
				}
			}
		}
		lastGone := c.active == ""
		c.mu.Unlock()
		if lastGone {
			// No controller left to release the held controls; ship the
			// releases ourselves so the remote pad returns to neutral.
			return input.ReleaseAll()
		}
		return nil
	}

	c.mu.Lock()
	active := c.active
	c.mu.Unlock()
	if ev.Device != active {
		return nil
	}

	switch ev.Kind {
	case capture.ButtonPressed, capture.ButtonReleased:
		return input.Normalize(input.RawEvent{
			Kind:    input.RawButton,
			Button:  ev.Button,
			Pressed: ev.Kind == capture.ButtonPressed,
		})
	case capture.AxisChanged:
		return input.Normalize(input.RawEvent{
			Kind:  input.RawAxis,
			Axis:  ev.Axis,
			Value: ev.Value,
		})
	}
	return nil
}

func (c *Capturer) buildBatch(events []input.Event) *protocol.InputBatch {
	now := protocol.Now()

	c.mu.Lock()
	id := c.controllerIDs[c.active]
	c.mu.Unlock()

	batch := &protocol.InputBatch{Timestamp: now, ControllerID: id}
	for _, ev := range events {
		switch ev.Kind {
		case input.Digital:
			batch.ButtonEvents = append(batch.ButtonEvents, protocol.ButtonEvent{
				Button:    ev.Name,
				Pressed:   ev.Pressed,
				Timestamp: now,
			})
		case input.Analog:
			batch.AxisEvents = append(batch.AxisEvents, protocol.AxisEvent{
				Axis:      ev.Name,
				Value:     ev.Value,
				Timestamp: now,
			})
		}
	}
	return batch
}
