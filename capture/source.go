// Package capture reads physical controllers and emits raw control events in
// the normalizer's vocabulary. The concrete reader sits behind Source so the
// rest of the pipeline can run against fakes.
package capture

import "github.com/drazoxXD/steamdeck-Controls/input"

// EventKind discriminates capture events.
type EventKind uint8

const (
	Connected EventKind = iota
	Disconnected
	ButtonPressed
	ButtonReleased
	AxisChanged
)

// DeviceInfo identifies one physical controller.
type DeviceInfo struct {
	ID        string
	Name      string
	VendorID  uint16
	ProductID uint16
	Connected bool
}

// Event is one hotplug or control change from a physical controller. Axis
// values are rescaled to [-1,1].
type Event struct {
	Device string
	Kind   EventKind
	Button input.Button
	Axis   input.Axis
	Value  float32
}

// Source delivers controller events until closed.
type Source interface {
	// Devices lists the currently known controllers.
	Devices() []DeviceInfo
	// Events is the stream of hotplug and control events. It is closed when
	// the source shuts down.
	Events() <-chan Event
	// Close stops the source and releases the underlying devices.
	Close()
}
