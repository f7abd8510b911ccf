// Package input normalizes raw controller controls into the stable named
// vocabulary both peers treat as contract. Raw identifiers come from the
// capture layer; names are what travels on the wire and what the playback
// reconciler keys on.
package input

// Button is a raw digital control identifier in the capture layer's
// vocabulary.
type Button uint8

const (
	BtnSouth Button = iota
	BtnEast
	BtnWest
	BtnNorth
	BtnLeftBumper
	BtnRightBumper
	BtnLeftTrigger
	BtnRightTrigger
	BtnSelect
	BtnStart
	BtnMode
	BtnLeftThumb
	BtnRightThumb
	BtnDPadUp
	BtnDPadDown
	BtnDPadLeft
	BtnDPadRight
)

// Axis is a raw analog control identifier.
type Axis uint8

const (
	AxisLeftStickX Axis = iota
	AxisLeftStickY
	AxisRightStickX
	AxisRightStickY
	AxisLeftTrigger
	AxisRightTrigger
)

// Semantic names. These are wire contract: the playback peer keys its
// reconciliation tables on the exact strings.
const (
	NameA         = "A (South)"
	NameB         = "B (East)"
	NameX         = "X (West)"
	NameY         = "Y (North)"
	NameLB        = "LB"
	NameRB        = "RB"
	NameLT        = "LT"
	NameRT        = "RT"
	NameSelect    = "Select"
	NameStart     = "Start"
	NameGuide     = "Guide"
	NameL3        = "L3"
	NameR3        = "R3"
	NameDPadUp    = "D-Pad Up"
	NameDPadDown  = "D-Pad Down"
	NameDPadLeft  = "D-Pad Left"
	NameDPadRight = "D-Pad Right"

	NameLeftStickX  = "Left Stick X"
	NameLeftStickY  = "Left Stick Y"
	NameRightStickX = "Right Stick X"
	NameRightStickY = "Right Stick Y"
	NameLTAxis      = "LT Axis"
	NameRTAxis      = "RT Axis"
)

var buttonNames = map[Button]string{
	BtnSouth:        NameA,
	BtnEast:         NameB,
	BtnWest:         NameX,
	BtnNorth:        NameY,
	BtnLeftBumper:   NameLB,
	BtnRightBumper:  NameRB,
	BtnLeftTrigger:  NameLT,
	BtnRightTrigger: NameRT,
	BtnSelect:       NameSelect,
	BtnStart:        NameStart,
	BtnMode:         NameGuide,
	BtnLeftThumb:    NameL3,
	BtnRightThumb:   NameR3,
	BtnDPadUp:       NameDPadUp,
	BtnDPadDown:     NameDPadDown,
	BtnDPadLeft:     NameDPadLeft,
	BtnDPadRight:    NameDPadRight,
}

var axisNames = map[Axis]string{
	AxisLeftStickX:   NameLeftStickX,
	AxisLeftStickY:   NameLeftStickY,
	AxisRightStickX:  NameRightStickX,
	AxisRightStickY:  NameRightStickY,
	AxisLeftTrigger:  NameLTAxis,
	AxisRightTrigger: NameRTAxis,
}

// ButtonName maps a raw button to its semantic name. Unmapped physical
// controls return ok=false and are expected to be dropped.
func ButtonName(b Button) (string, bool) {
	name, ok := buttonNames[b]
	return name, ok
}

// AxisName maps a raw axis to its semantic name.
func AxisName(a Axis) (string, bool) {
	name, ok := axisNames[a]
	return name, ok
}
