package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is the externally-tagged message union used on the stream link.
// Exactly one variant is set. Struct variants marshal as a single-key object
// ({"ControllerState": {...}}); the unit variants Ping and Pong marshal as
// bare strings ("Ping"), matching the peer's serialization.
type Envelope struct {
	ControllerList  []ControllerInfo
	ControllerState *ControllerState
	Ping            bool
	Pong            bool
}

// NewPing returns a Ping envelope.
func NewPing() *Envelope { return &Envelope{Ping: true} }

// NewPong returns a Pong envelope.
func NewPong() *Envelope { return &Envelope{Pong: true} }

func (e Envelope) MarshalJSON() ([]byte, error) {
	switch {
	case e.Ping:
		return json.Marshal("Ping")
	case e.Pong:
		return json.Marshal("Pong")
	case e.ControllerList != nil:
		return json.Marshal(map[string][]ControllerInfo{"ControllerList": e.ControllerList})
	case e.ControllerState != nil:
		return json.Marshal(map[string]*ControllerState{"ControllerState": e.ControllerState})
	}
	return nil, fmt.Errorf("envelope has no variant set")
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	*e = Envelope{}

	// Unit variants arrive as bare strings.
	var unit string
	if err := json.Unmarshal(data, &unit); err == nil {
		switch unit {
		case "Ping":
			e.Ping = true
			return nil
		case "Pong":
			e.Pong = true
			return nil
		}
		return fmt.Errorf("unknown message variant %q", unit)
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("message is neither a variant string nor an object: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("message must have exactly one variant, got %d", len(tagged))
	}
	for tag, raw := range tagged {
		switch tag {
		case "ControllerList":
			list := []ControllerInfo{}
			if err := json.Unmarshal(raw, &list); err != nil {
				return fmt.Errorf("decode ControllerList: %w", err)
			}
			e.ControllerList = list
		case "ControllerState":
			var state ControllerState
			if err := json.Unmarshal(raw, &state); err != nil {
				return fmt.Errorf("decode ControllerState: %w", err)
			}
			e.ControllerState = &state
		default:
			return fmt.Errorf("unknown message variant %q", tag)
		}
	}
	return nil
}
