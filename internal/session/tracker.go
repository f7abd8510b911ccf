package session

import (
	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

// StateTracker folds normalized events into a full controller snapshot for
// the full-state publishing path. Not safe for concurrent use; the capture
// loop owns it.
type StateTracker struct {
	state protocol.ControllerState
	dirty bool
}

// Apply folds one event into the tracked state.
func (t *StateTracker) Apply(ev input.Event) {
	switch ev.Kind {
	case input.Digital:
		t.applyDigital(ev.Name, ev.Pressed)
	case input.Analog:
		t.applyAnalog(ev.Name, ev.Value)
	}
}

// Dirty reports whether the state changed since the last Snapshot.
func (t *StateTracker) Dirty() bool {
	return t.dirty
}

// Snapshot stamps and returns the current state, clearing the dirty flag.
func (t *StateTracker) Snapshot(timestampMS uint64) protocol.ControllerState {
	t.dirty = false
	s := t.state
	s.Timestamp = timestampMS
	return s
}

func (t *StateTracker) applyDigital(name string, pressed bool) {
	var field *bool
	switch name {
	case input.NameA:
		field = &t.state.ButtonA
	case input.NameB:
		field = &t.state.ButtonB
	case input.NameX:
		field = &t.state.ButtonX
	case input.NameY:
		field = &t.state.ButtonY
	case input.NameLB:
		field = &t.state.ButtonLB
	case input.NameRB:
		field = &t.state.ButtonRB
	case input.NameSelect:
		field = &t.state.ButtonBack
	case input.NameStart:
		field = &t.state.ButtonStart
	case input.NameGuide:
		field = &t.state.ButtonGuide
	case input.NameL3:
		field = &t.state.ButtonL3
	case input.NameR3:
		field = &t.state.ButtonR3
	case input.NameDPadUp:
		field = &t.state.DPadUp
	case input.NameDPadDown:
		field = &t.state.DPadDown
	case input.NameDPadLeft:
		field = &t.state.DPadLeft
	case input.NameDPadRight:
		field = &t.state.DPadRight
	default:
		// Digital LT/RT duplicate the analog trigger value already tracked.
		return
	}
	if *field != pressed {
		*field = pressed
		t.dirty = true
	}
}

func (t *StateTracker) applyAnalog(name string, value float32) {
	var field *float32
	switch name {
	case input.NameLeftStickX:
		field = &t.state.LeftStickX
	case input.NameLeftStickY:
		field = &t.state.LeftStickY
	case input.NameRightStickX:
		field = &t.state.RightStickX
	case input.NameRightStickY:
		field = &t.state.RightStickY
	case input.NameLTAxis:
		field = &t.state.LeftTrigger
	case input.NameRTAxis:
		field = &t.state.RightTrigger
	default:
		return
	}
	if *field != value {
		*field = value
		t.dirty = true
	}
}
