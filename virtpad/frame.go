// Package virtpad folds named input events into a single virtual Xbox 360
// gamepad frame and pushes it to a pluggable injection target.
package virtpad

// XInput wButtons bit layout.
const (
	ButtonDPadUp     uint16 = 0x0001
	ButtonDPadDown   uint16 = 0x0002
	ButtonDPadLeft   uint16 = 0x0004
	ButtonDPadRight  uint16 = 0x0008
	ButtonStart      uint16 = 0x0010
	ButtonBack       uint16 = 0x0020
	ButtonLeftThumb  uint16 = 0x0040
	ButtonRightThumb uint16 = 0x0080
	ButtonLB         uint16 = 0x0100
	ButtonRB         uint16 = 0x0200
	ButtonGuide      uint16 = 0x0400
	ButtonA          uint16 = 0x1000
	ButtonB          uint16 = 0x2000
	ButtonX          uint16 = 0x4000
	ButtonY          uint16 = 0x8000
)

// Frame is the complete state of the virtual pad at one instant.
type Frame struct {
	Buttons uint16
	LX, LY  int16
	RX, RY  int16
	LT, RT  uint8
}

// Neutral reports whether the frame is the all-released resting state.
func (f Frame) Neutral() bool {
	return f == Frame{}
}
