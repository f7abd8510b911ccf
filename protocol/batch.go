// Package protocol defines the wire types exchanged between the capture and
// playback hosts, and the two framings they travel in: bare JSON text
// messages on a message-oriented link, or a u32 little-endian length prefix
// followed by the same JSON bytes on a raw byte stream.
package protocol

import "time"

// Protocol constants shared by both peers.
const (
	ProtocolVersion = 1
	DefaultPort     = 12345
)

// ButtonEvent is a single named digital update.
type ButtonEvent struct {
	Button    string `json:"button"`
	Pressed   bool   `json:"pressed"`
	Timestamp uint64 `json:"timestamp"`
}

// AxisEvent is a single named analog update. Value is in [-1,1] for stick
// axes and [0,1] for trigger axes.
type AxisEvent struct {
	Axis      string  `json:"axis"`
	Value     float32 `json:"value"`
	Timestamp uint64  `json:"timestamp"`
}

// InputBatch bundles one capture tick's worth of named events with the
// sender-side send time. Batches are self-contained: a dropped or reordered
// batch degrades responsiveness but never corrupts receiver state.
type InputBatch struct {
	Timestamp    uint64        `json:"timestamp"`
	ControllerID uint32        `json:"controller_id"`
	ButtonEvents []ButtonEvent `json:"button_events"`
	AxisEvents   []AxisEvent   `json:"axis_events"`
}

// Empty reports whether the batch carries no events.
func (b *InputBatch) Empty() bool {
	return len(b.ButtonEvents) == 0 && len(b.AxisEvents) == 0
}

// Now returns the current wall clock in milliseconds since the Unix epoch,
// the timestamp unit used throughout the protocol.
func Now() uint64 {
	return uint64(time.Now().UnixMilli())
}

// Delay computes the one-way delay of a batch at receive time. Clock skew
// that makes the receiver appear ahead of the sender clamps to zero instead
// of underflowing.
func Delay(nowMS uint64, b *InputBatch) uint64 {
	if nowMS >= b.Timestamp {
		return nowMS - b.Timestamp
	}
	return 0
}

// ControllerInfo describes one physical controller on the capture host.
type ControllerInfo struct {
	Name      string `json:"name"`
	UUID      string `json:"uuid"`
	VendorID  uint16 `json:"vendor_id"`
	ProductID uint16 `json:"product_id"`
	Connected bool   `json:"connected"`
}

// ControllerState is the full-state snapshot carried by the stream link
// variant. Stick values are in [-1,1], triggers in [0,1].
type ControllerState struct {
	LeftStickX   float32 `json:"left_stick_x"`
	LeftStickY   float32 `json:"left_stick_y"`
	RightStickX  float32 `json:"right_stick_x"`
	RightStickY  float32 `json:"right_stick_y"`
	LeftTrigger  float32 `json:"left_trigger"`
	RightTrigger float32 `json:"right_trigger"`
	DPadUp       bool    `json:"dpad_up"`
	DPadDown     bool    `json:"dpad_down"`
	DPadLeft     bool    `json:"dpad_left"`
	DPadRight    bool    `json:"dpad_right"`
	ButtonA      bool    `json:"button_a"`
	ButtonB      bool    `json:"button_b"`
	ButtonX      bool    `json:"button_x"`
	ButtonY      bool    `json:"button_y"`
	ButtonLB     bool    `json:"button_lb"`
	ButtonRB     bool    `json:"button_rb"`
	ButtonBack   bool    `json:"button_back"`
	ButtonStart  bool    `json:"button_start"`
	ButtonGuide  bool    `json:"button_guide"`
	ButtonL3     bool    `json:"button_l3"`
	ButtonR3     bool    `json:"button_r3"`
	Timestamp    uint64  `json:"timestamp"`
}
