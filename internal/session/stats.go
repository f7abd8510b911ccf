package session

import "sync"

// historySize is how many received events the rolling history keeps.
const historySize = 100

// ObservedEvent is one received input event annotated with its measured
// one-way delay.
type ObservedEvent struct {
	Name    string
	Digital bool
	Pressed bool
	Value   float32
	DelayMS uint64
}

// Snapshot is a copy-out view of the playback statistics.
type Snapshot struct {
	Recent     []ObservedEvent
	Count      uint64
	MinDelayMS uint64
	AvgDelayMS uint64
	MaxDelayMS uint64
	Clients    int
}

// Stats tracks delay aggregates, a rolling event history and the connected
// client count. The mutex is never held across I/O.
type Stats struct {
	mu      sync.Mutex
	ring    [historySize]ObservedEvent
	next    int
	filled  int
	count   uint64
	sum     uint64
	min     uint64
	max     uint64
	clients int
}

// Observe records one received event and its delay.
func (s *Stats) Observe(ev ObservedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ring[s.next] = ev
	s.next = (s.next + 1) % historySize
	if s.filled < historySize {
		s.filled++
	}

	s.count++
	s.sum += ev.DelayMS
	if s.count == 1 || ev.DelayMS < s.min {
		s.min = ev.DelayMS
	}
	if ev.DelayMS > s.max {
		s.max = ev.DelayMS
	}
}

// ClientConnected bumps the connected client count.
func (s *Stats) ClientConnected() {
	s.mu.Lock()
	s.clients++
	s.mu.Unlock()
}

// ClientDisconnected drops the connected client count.
func (s *Stats) ClientDisconnected() {
	s.mu.Lock()
	if s.clients > 0 {
		s.clients--
	}
	s.mu.Unlock()
}

// Snapshot returns a copy of the current statistics, newest event first.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	recent := make([]ObservedEvent, 0, s.filled)
	for i := 1; i <= s.filled; i++ {
		idx := (s.next - i + historySize) % historySize
		recent = append(recent, s.ring[idx])
	}

	snap := Snapshot{
		Recent:     recent,
		Count:      s.count,
		MinDelayMS: s.min,
		MaxDelayMS: s.max,
		Clients:    s.clients,
	}
	if s.count > 0 {
		snap.AvgDelayMS = s.sum / s.count
	}
	return snap
}
