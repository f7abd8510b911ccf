package session_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/internal/session"
)

func TestTrackerFoldsEvents(t *testing.T) {
	var tr session.StateTracker
	assert.False(t, tr.Dirty())

	tr.Apply(input.Event{Kind: input.Digital, Name: "A (South)", Pressed: true})
	tr.Apply(input.Event{Kind: input.Analog, Name: "Left Stick X", Value: -0.5})
	tr.Apply(input.Event{Kind: input.Analog, Name: "RT Axis", Value: 1})
	assert.True(t, tr.Dirty())

	state := tr.Snapshot(42)
	assert.True(t, state.ButtonA)
	assert.InDelta(t, -0.5, state.LeftStickX, 1e-6)
	assert.InDelta(t, 1.0, state.RightTrigger, 1e-6)
	assert.Equal(t, uint64(42), state.Timestamp)
	assert.False(t, tr.Dirty(), "snapshot clears the dirty flag")
}

func TestTrackerNoChangeStaysClean(t *testing.T) {
	var tr session.StateTracker
	tr.Apply(input.Event{Kind: input.Digital, Name: "Start", Pressed: true})
	tr.Snapshot(1)

	// Same value again is not a change.
	tr.Apply(input.Event{Kind: input.Digital, Name: "Start", Pressed: true})
	assert.False(t, tr.Dirty())
}

func TestTrackerIgnoresDigitalTriggers(t *testing.T) {
	// The analog trigger axes already carry the value; the synthetic
	// digital events must not dirty the state.
	var tr session.StateTracker
	tr.Apply(input.Event{Kind: input.Digital, Name: "LT", Pressed: true})
	tr.Apply(input.Event{Kind: input.Digital, Name: "RT", Pressed: true})
	assert.False(t, tr.Dirty())
}

func TestTrackerReleaseDirties(t *testing.T) {
	var tr session.StateTracker
	tr.Apply(input.Event{Kind: input.Digital, Name: "D-Pad Up", Pressed: true})
	tr.Snapshot(1)

	tr.Apply(input.Event{Kind: input.Digital, Name: "D-Pad Up", Pressed: false})
	assert.True(t, tr.Dirty())
	assert.False(t, tr.Snapshot(2).DPadUp)
}
