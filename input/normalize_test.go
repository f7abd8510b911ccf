package input_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/input"
)

func TestNormalizeButton(t *testing.T) {
	tests := []struct {
		name    string
		button  input.Button
		pressed bool
		want    string
	}{
		{"south is A", input.BtnSouth, true, "A (South)"},
		{"east is B", input.BtnEast, false, "B (East)"},
		{"west is X", input.BtnWest, true, "X (West)"},
		{"north is Y", input.BtnNorth, true, "Y (North)"},
		{"mode is Guide", input.BtnMode, true, "Guide"},
		{"left thumb is L3", input.BtnLeftThumb, true, "L3"},
		{"right thumb is R3", input.BtnRightThumb, false, "R3"},
		{"dpad up", input.BtnDPadUp, true, "D-Pad Up"},
		{"trigger button is LT", input.BtnLeftTrigger, true, "LT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := input.Normalize(input.RawEvent{
				Kind:    input.RawButton,
				Button:  tt.button,
				Pressed: tt.pressed,
			})
			require.Len(t, events, 1)
			assert.Equal(t, input.Digital, events[0].Kind)
			assert.Equal(t, tt.want, events[0].Name)
			assert.Equal(t, tt.pressed, events[0].Pressed)
		})
	}
}

func TestNormalizeStickAxis(t *testing.T) {
	events := input.Normalize(input.RawEvent{
		Kind:  input.RawAxis,
		Axis:  input.AxisLeftStickX,
		Value: -0.5,
	})
	require.Len(t, events, 1)
	assert.Equal(t, input.Analog, events[0].Kind)
	assert.Equal(t, "Left Stick X", events[0].Name)
	assert.InDelta(t, -0.5, events[0].Value, 1e-6)
}

func TestNormalizeTriggerAxis(t *testing.T) {
	tests := []struct {
		name        string
		axis        input.Axis
		raw         float32
		wantValue   float32
		wantName    string
		wantDigital string
		wantPressed bool
	}{
		{"resting left trigger", input.AxisLeftTrigger, -1, 0, "LT Axis", "LT", false},
		{"full left trigger", input.AxisLeftTrigger, 1, 1, "LT Axis", "LT", true},
		{"just above threshold", input.AxisLeftTrigger, -0.78, 0.11, "LT Axis", "LT", true},
		{"exactly threshold releases", input.AxisLeftTrigger, -0.8, 0.1, "LT Axis", "LT", false},
		{"right trigger maps to RT", input.AxisRightTrigger, 0, 0.5, "RT Axis", "RT", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := input.Normalize(input.RawEvent{
				Kind:  input.RawAxis,
				Axis:  tt.axis,
				Value: tt.raw,
			})
			require.Len(t, events, 2)

			assert.Equal(t, input.Analog, events[0].Kind)
			assert.Equal(t, tt.wantName, events[0].Name)
			assert.InDelta(t, tt.wantValue, events[0].Value, 1e-6)

			assert.Equal(t, input.Digital, events[1].Kind)
			assert.Equal(t, tt.wantDigital, events[1].Name)
			assert.Equal(t, tt.wantPressed, events[1].Pressed)
		})
	}
}

func TestNormalizeTriggerDigitalMatchesAnalog(t *testing.T) {
	// Whatever the sample, the synthetic digital state must agree with the
	// emitted analog value and the 0.1 threshold.
	for raw := float32(-1); raw <= 1; raw += 0.05 {
		events := input.Normalize(input.RawEvent{
			Kind:  input.RawAxis,
			Axis:  input.AxisRightTrigger,
			Value: raw,
		})
		require.Len(t, events, 2)
		assert.Equal(t, events[0].Value > input.TriggerThreshold, events[1].Pressed,
			"raw %.2f", raw)
	}
}

func TestReleaseAllCoversEveryControl(t *testing.T) {
	events := input.ReleaseAll()
	require.Len(t, events, 23)

	names := make(map[string]bool, len(events))
	for _, ev := range events {
		assert.False(t, ev.Pressed)
		assert.Zero(t, ev.Value)
		names[ev.Name] = true
	}
	// Every control a peer could be holding gets an explicit release,
	// digital triggers and their analog axes included.
	for _, want := range []string{"A (South)", "LT", "RT", "D-Pad Right", "Left Stick X", "RT Axis"} {
		assert.True(t, names[want], "missing release for %s", want)
	}
}

func TestNormalizeUnknownControlsDropped(t *testing.T) {
	assert.Empty(t, input.Normalize(input.RawEvent{Kind: input.RawButton, Button: input.Button(200)}))
	assert.Empty(t, input.Normalize(input.RawEvent{Kind: input.RawAxis, Axis: input.Axis(200)}))
}
