package input

// TriggerThreshold is the analog trigger value above which the synthetic
// digital trigger event reports pressed. A value of exactly the threshold
// reports released.
const TriggerThreshold float32 = 0.1

// Kind tags a normalized event as digital or analog.
type Kind uint8

const (
	Digital Kind = iota
	Analog
)

// RawKind tags a raw capture event.
type RawKind uint8

const (
	RawButton RawKind = iota
	RawAxis
)

// RawEvent is one control change as delivered by the capture layer. Axis
// values are in [-1,1] for every axis, triggers included (resting trigger is
// -1, fully pulled is 1).
type RawEvent struct {
	Kind    RawKind
	Button  Button
	Axis    Axis
	Pressed bool
	Value   float32
}

// Event is one normalized, named control change.
type Event struct {
	Kind    Kind
	Name    string
	Pressed bool    // digital events
	Value   float32 // analog events: [-1,1] sticks, [0,1] triggers
}

// Normalize converts one raw event into zero or more named events. Unknown
// controls yield nothing. A trigger axis sample yields its analog event in
// [0,1] followed by the synthetic digital trigger event derived from the same
// value, so the two can never disagree.
func Normalize(raw RawEvent) []Event {
	switch raw.Kind {
	case RawButton:
		name, ok := ButtonName(raw.Button)
		if !ok {
			return nil
		}
		return []Event{{Kind: Digital, Name: name, Pressed: raw.Pressed}}
	case RawAxis:
		name, ok := AxisName(raw.Axis)
		if !ok {
			return nil
		}
		if raw.Axis != AxisLeftTrigger && raw.Axis != AxisRightTrigger {
			return []Event{{Kind: Analog, Name: name, Value: raw.Value}}
		}
		value := (raw.Value + 1) / 2
		digital := NameLT
		if raw.Axis == AxisRightTrigger {
			digital = NameRT
		}
		return []Event{
			{Kind: Analog, Name: name, Value: value},
			{Kind: Digital, Name: digital, Pressed: value > TriggerThreshold},
		}
	}
	return nil
}

// ReleaseAll returns events releasing every known control: all buttons up,
// all axes centered, triggers at rest. Emitted when the last physical
// controller goes away so the remote pad does not stay frozen mid-press.
func ReleaseAll() []Event {
	events := make([]Event, 0, len(buttonNames)+len(axisNames))
	for b := BtnSouth; b <= BtnDPadRight; b++ {
		events = append(events, Event{Kind: Digital, Name: buttonNames[b]})
	}
	for a := AxisLeftStickX; a <= AxisRightTrigger; a++ {
		events = append(events, Event{Kind: Analog, Name: axisNames[a]})
	}
	return events
}
