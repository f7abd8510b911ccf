package virtpad

import (
	"log/slog"
	"math"
	"sync"

	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

var buttonMasks = map[string]uint16{
	input.NameA:         ButtonA,
	input.NameB:         ButtonB,
	input.NameX:         ButtonX,
	input.NameY:         ButtonY,
	input.NameLB:        ButtonLB,
	input.NameRB:        ButtonRB,
	input.NameSelect:    ButtonBack,
	input.NameStart:     ButtonStart,
	input.NameGuide:     ButtonGuide,
	input.NameL3:        ButtonLeftThumb,
	input.NameR3:        ButtonRightThumb,
	input.NameDPadUp:    ButtonDPadUp,
	input.NameDPadDown:  ButtonDPadDown,
	input.NameDPadLeft:  ButtonDPadLeft,
	input.NameDPadRight: ButtonDPadRight,
}

// Reconciler folds named events into a Frame and flushes it to a Target.
// Unknown names are ignored so a newer peer can send controls an older
// playback host does not know. Safe for concurrent use.
type Reconciler struct {
	logger *slog.Logger

	mu        sync.Mutex
	frame     Frame
	target    Target
	connected bool
}

// New returns a Reconciler with no target attached. Until Attach is called,
// Flush accepts and discards frames without any I/O.
func New(logger *slog.Logger) *Reconciler {
	return &Reconciler{logger: logger}
}

// Attach sets the injection target. The next Flush pushes to it.
func (r *Reconciler) Attach(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.target = t
	r.connected = false
}

// Detach releases the target, closing it. The reconciler returns to the
// silent no-I/O state.
func (r *Reconciler) Detach() error {
	r.mu.Lock()
	t := r.target
	r.target = nil
	r.connected = false
	r.mu.Unlock()
	if t == nil {
		return nil
	}
	return t.Close()
}

// IsConnected reports whether the last Flush reached the target.
func (r *Reconciler) IsConnected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connected
}

// Snapshot returns a copy of the current frame.
func (r *Reconciler) Snapshot() Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}

// ApplyButton sets or clears the named button. The digital trigger names
// drive the trigger bytes to full scale instead of a button bit.
func (r *Reconciler) ApplyButton(name string, pressed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch name {
	case input.NameLT:
		r.frame.LT = triggerByte(pressed)
	case input.NameRT:
		r.frame.RT = triggerByte(pressed)
	default:
		mask, ok := buttonMasks[name]
		if !ok {
			r.logger.Debug("ignoring unknown button", "button", name)
			return
		}
		if pressed {
			r.frame.Buttons |= mask
		} else {
			r.frame.Buttons &^= mask
		}
	}
}

// ApplyAxis sets the named axis. Stick values are expected in [-1,1] and
// trigger values in [0,1]; out-of-range input saturates.
func (r *Reconciler) ApplyAxis(name string, value float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch name {
	case input.NameLeftStickX:
		r.frame.LX = stickValue(value)
	case input.NameLeftStickY:
		r.frame.LY = stickValue(value)
	case input.NameRightStickX:
		r.frame.RX = stickValue(value)
	case input.NameRightStickY:
		r.frame.RY = stickValue(value)
	case input.NameLTAxis:
		r.frame.LT = triggerValue(value)
	case input.NameRTAxis:
		r.frame.RT = triggerValue(value)
	default:
		r.logger.Debug("ignoring unknown axis", "axis", name)
	}
}

// ApplyState replaces the whole frame from a full-state snapshot.
func (r *Reconciler) ApplyState(s *protocol.ControllerState) {
	f := Frame{
		LX: stickValue(s.LeftStickX),
		LY: stickValue(s.LeftStickY),
		RX: stickValue(s.RightStickX),
		RY: stickValue(s.RightStickY),
		LT: triggerValue(s.LeftTrigger),
		RT: triggerValue(s.RightTrigger),
	}
	set := func(mask uint16, on bool) {
		if on {
			f.Buttons |= mask
		}
	}
	set(ButtonDPadUp, s.DPadUp)
	set(ButtonDPadDown, s.DPadDown)
	set(ButtonDPadLeft, s.DPadLeft)
	set(ButtonDPadRight, s.DPadRight)
	set(ButtonA, s.ButtonA)
	set(ButtonB, s.ButtonB)
	set(ButtonX, s.ButtonX)
	set(ButtonY, s.ButtonY)
	set(ButtonLB, s.ButtonLB)
	set(ButtonRB, s.ButtonRB)
	set(ButtonBack, s.ButtonBack)
	set(ButtonStart, s.ButtonStart)
	set(ButtonGuide, s.ButtonGuide)
	set(ButtonLeftThumb, s.ButtonL3)
	set(ButtonRightThumb, s.ButtonR3)

	r.mu.Lock()
	r.frame = f
	r.mu.Unlock()
}

// Reset returns the frame to neutral without flushing.
func (r *Reconciler) Reset() {
	r.mu.Lock()
	r.frame = Frame{}
	r.mu.Unlock()
}

// Flush pushes the current frame to the attached target. With no target it
// is a silent no-op. A push failure is returned and clears the connected
// flag, but the target stays attached and the next Flush retries.
func (r *Reconciler) Flush() error {
	r.mu.Lock()
	t := r.target
	f := r.frame
	r.mu.Unlock()
	if t == nil {
		return nil
	}

	err := t.Push(f)

	r.mu.Lock()
	r.connected = err == nil
	r.mu.Unlock()
	if err != nil {
		r.logger.Warn("frame push failed", "error", err)
	}
	return err
}

func stickValue(v float32) int16 {
	scaled := math.Round(float64(v) * 32767)
	if scaled > 32767 {
		return 32767
	}
	if scaled < -32767 {
		return -32767
	}
	return int16(scaled)
}

func triggerValue(v float32) uint8 {
	scaled := math.Round(float64(v) * 255)
	if scaled > 255 {
		return 255
	}
	if scaled < 0 {
		return 0
	}
	return uint8(scaled)
}

func triggerByte(pressed bool) uint8 {
	if pressed {
		return 255
	}
	return 0
}
