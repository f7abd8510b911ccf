// Package session orchestrates the two halves of the pipeline: the capture
// loop that batches controller input onto the link, and the playback
// sessions that fold received input into the virtual pad.
package session

// ConnState is the capture side's view of the link.
type ConnState uint8

const (
	Disconnected ConnState = iota
	Connecting
	Connected
	ConnectFailed
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ConnectFailed:
		return "connect failed"
	}
	return "unknown"
}
