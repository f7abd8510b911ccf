package capture

import (
	"log/slog"

	gamepads "github.com/doingharm/go-gamepad-bus"

	"github.com/drazoxXD/steamdeck-Controls/input"
)

// Linux joystick controls arrive as indices in the xpad driver's order.
var busButtons = map[int]input.Button{
	0:  input.BtnSouth,
	1:  input.BtnEast,
	2:  input.BtnWest,
	3:  input.BtnNorth,
	4:  input.BtnLeftBumper,
	5:  input.BtnRightBumper,
	6:  input.BtnSelect,
	7:  input.BtnStart,
	8:  input.BtnMode,
	9:  input.BtnLeftThumb,
	10: input.BtnRightThumb,
}

var busAxes = map[int]input.Axis{
	0: input.AxisLeftStickX,
	1: input.AxisLeftStickY,
	2: input.AxisLeftTrigger,
	3: input.AxisRightStickX,
	4: input.AxisRightStickY,
	5: input.AxisRightTrigger,
}

// Hat axes carry the D-pad; they become digital events.
const (
	hatXIndex = 6
	hatYIndex = 7
)

const axisScale = 32767

// USB identity of the Steam Deck built-in controller. The joystick bus does
// not expose vendor/product ids, and this source runs on the Deck itself.
const (
	vendorValve      = 0x28de
	productSteamDeck = 0x1102
)

// BusSource reads controllers through the system gamepad bus and adapts its
// events to the capture vocabulary.
type BusSource struct {
	bus    gamepads.Bus
	ch     *gamepads.EventChannel
	out    chan Event
	logger *slog.Logger
	done   chan struct{}
}

// NewBusSource opens the gamepad bus and starts translating its events.
func NewBusSource(logger *slog.Logger) (*BusSource, error) {
	bus, errCh, err := gamepads.New()
	if err != nil {
		return nil, err
	}

	s := &BusSource{
		bus:    bus,
		ch:     bus.NewEventChannel(),
		out:    make(chan Event, 64),
		logger: logger,
		done:   make(chan struct{}),
	}
	go s.drainErrors(errCh)
	go s.run()
	return s, nil
}

// Devices lists the controllers currently attached to the bus.
func (s *BusSource) Devices() []DeviceInfo {
	pads := s.bus.Gamepads()
	infos := make([]DeviceInfo, 0, len(pads))
	for _, p := range pads {
		infos = append(infos, DeviceInfo{
			ID:        p.ID,
			Name:      p.Model,
			VendorID:  vendorValve,
			ProductID: productSteamDeck,
			Connected: true,
		})
	}
	return infos
}

// Events returns the translated event stream.
func (s *BusSource) Events() <-chan Event {
	return s.out
}

// Close stops the translation loop and releases the bus.
func (s *BusSource) Close() {
	close(s.done)
	if s.ch != nil {
		s.ch.CancelFunc()
	}
	s.bus.Close()
}

func (s *BusSource) drainErrors(errCh <-chan error) {
	for err := range errCh {
		s.logger.Warn("gamepad bus error", "error", err)
	}
}

func (s *BusSource) run() {
	defer close(s.out)
	if s.ch == nil {
		return
	}
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.ch.Ch:
			if !ok {
				return
			}
			s.handle(ev)
		}
	}
}

func (s *BusSource) handle(ev *gamepads.Event) {
	switch ev.Type {
	case gamepads.ConnectEventType:
		pad, ok := ev.Data.(gamepads.Gamepad)
		if !ok {
			return
		}
		if err := s.bus.Subscribe(pad.ID); err != nil {
			s.logger.Warn("subscribe failed", "device", pad.ID, "error", err)
			return
		}
		s.logger.Info("controller connected", "device", pad.ID, "model", pad.Model)
		s.emit(Event{Device: pad.ID, Kind: Connected})
	case gamepads.DisconnectEventType:
		s.logger.Info("controller disconnected", "device", ev.ID)
		s.emit(Event{Device: ev.ID, Kind: Disconnected})
	case gamepads.ControlEventType:
		ctrl, ok := ev.Data.(gamepads.ControlEvent)
		if !ok {
			return
		}
		s.control(ev.ID, ctrl)
	}
}

func (s *BusSource) control(device string, ctrl gamepads.ControlEvent) {
	switch {
	case ctrl.Type&gamepads.Button != 0:
		btn, ok := busButtons[ctrl.Index]
		if !ok {
			return
		}
		kind := ButtonReleased
		if ctrl.Value != 0 {
			kind = ButtonPressed
		}
		s.emit(Event{Device: device, Kind: kind, Button: btn})
	case ctrl.Type&gamepads.Axes != 0:
		switch ctrl.Index {
		case hatXIndex:
			s.hat(device, ctrl.Value, input.BtnDPadLeft, input.BtnDPadRight)
		case hatYIndex:
			s.hat(device, ctrl.Value, input.BtnDPadUp, input.BtnDPadDown)
		default:
			axis, ok := busAxes[ctrl.Index]
			if !ok {
				return
			}
			s.emit(Event{
				Device: device,
				Kind:   AxisChanged,
				Axis:   axis,
				Value:  clamp1(float32(ctrl.Value) / axisScale),
			})
		}
	}
}

// hat turns one hat axis sample into press/release events for its two
// directions. A centered hat releases both.
func (s *BusSource) hat(device string, value int16, negative, positive input.Button) {
	negKind, posKind := ButtonReleased, ButtonReleased
	switch {
	case value < 0:
		negKind = ButtonPressed
	case value > 0:
		posKind = ButtonPressed
	}
	s.emit(Event{Device: device, Kind: negKind, Button: negative})
	s.emit(Event{Device: device, Kind: posKind, Button: positive})
}

func (s *BusSource) emit(ev Event) {
	select {
	case s.out <- ev:
	case <-s.done:
	}
}

func clamp1(v float32) float32 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
