package protocol

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize bounds the length prefix a peer may claim. A controller input
// batch is a few hundred bytes; anything near this limit is a corrupt or
// hostile stream.
const MaxFrameSize = 1 << 20

// ErrFrameTooLarge is returned when a length prefix exceeds MaxFrameSize.
var ErrFrameTooLarge = errors.New("frame length exceeds maximum")

// DecodeError wraps payload-level decode failures so callers can distinguish
// a droppable bad message from a dead stream.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return "decode message: " + e.Err.Error() }
func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeFrame serializes v as JSON behind a 4-byte little-endian length
// prefix.
func EncodeFrame(v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal frame payload: %w", err)
	}
	buf := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf, nil
}

// WriteFrame encodes v and writes the complete frame to w.
func WriteFrame(w io.Writer, v any) error {
	frame, err := EncodeFrame(v)
	if err != nil {
		return err
	}
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed payload from r. A clean close at a
// frame boundary returns io.EOF; a close mid-frame returns
// io.ErrUnexpectedEOF. The returned bytes are the raw JSON payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame length: %w", err)
	}
	n := binary.LittleEndian.Uint32(lenBytes[:])
	if n > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", n, err)
	}
	return payload, nil
}

// DecodeBatch parses an InputBatch payload.
func DecodeBatch(payload []byte) (*InputBatch, error) {
	var b InputBatch
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &b, nil
}

// DecodeEnvelope parses an Envelope payload.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, &DecodeError{Err: err}
	}
	return &e, nil
}
