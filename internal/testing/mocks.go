// Package testing holds shared test doubles for the capture and playback
// pipelines.
package testing

import (
	"io"
	"log/slog"
	"sync"

	"github.com/drazoxXD/steamdeck-Controls/capture"
	"github.com/drazoxXD/steamdeck-Controls/internal/log"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NopRawLogger returns a raw frame logger that drops everything.
func NopRawLogger() log.RawLogger {
	return log.NewRaw(nil)
}

// FakeSource is a scriptable capture.Source.
type FakeSource struct {
	ch chan capture.Event

	mu      sync.Mutex
	devices []capture.DeviceInfo
	closed  bool
}

// NewFakeSource returns a source with a buffered event channel.
func NewFakeSource() *FakeSource {
	return &FakeSource{ch: make(chan capture.Event, 128)}
}

// Emit queues one event.
func (f *FakeSource) Emit(ev capture.Event) {
	f.ch <- ev
}

// SetDevices replaces the device list.
func (f *FakeSource) SetDevices(devices ...capture.DeviceInfo) {
	f.mu.Lock()
	f.devices = devices
	f.mu.Unlock()
}

func (f *FakeSource) Devices() []capture.DeviceInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]capture.DeviceInfo, len(f.devices))
	copy(out, f.devices)
	return out
}

func (f *FakeSource) Events() <-chan capture.Event {
	return f.ch
}

func (f *FakeSource) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
}
