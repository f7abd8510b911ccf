package session_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/internal/session"
)

func TestStatsAggregates(t *testing.T) {
	s := &session.Stats{}
	for _, d := range []uint64{10, 20, 30} {
		s.Observe(session.ObservedEvent{Name: "A (South)", Digital: true, DelayMS: d})
	}

	snap := s.Snapshot()
	assert.Equal(t, uint64(3), snap.Count)
	assert.Equal(t, uint64(10), snap.MinDelayMS)
	assert.Equal(t, uint64(20), snap.AvgDelayMS)
	assert.Equal(t, uint64(30), snap.MaxDelayMS)
	require.Len(t, snap.Recent, 3)
	// Newest first.
	assert.Equal(t, uint64(30), snap.Recent[0].DelayMS)
	assert.Equal(t, uint64(10), snap.Recent[2].DelayMS)
}

func TestStatsHistoryBounded(t *testing.T) {
	s := &session.Stats{}
	for i := 0; i < 150; i++ {
		s.Observe(session.ObservedEvent{Name: fmt.Sprintf("ev-%d", i), DelayMS: uint64(i)})
	}

	snap := s.Snapshot()
	assert.Equal(t, uint64(150), snap.Count)
	require.Len(t, snap.Recent, 100)
	assert.Equal(t, "ev-149", snap.Recent[0].Name)
	assert.Equal(t, "ev-50", snap.Recent[99].Name)
}

func TestStatsClients(t *testing.T) {
	s := &session.Stats{}
	s.ClientConnected()
	s.ClientConnected()
	s.ClientDisconnected()
	assert.Equal(t, 1, s.Snapshot().Clients)

	s.ClientDisconnected()
	s.ClientDisconnected()
	assert.Equal(t, 0, s.Snapshot().Clients)
}

func TestStatsEmptySnapshot(t *testing.T) {
	s := &session.Stats{}
	snap := s.Snapshot()
	assert.Zero(t, snap.Count)
	assert.Zero(t, snap.AvgDelayMS)
	assert.Empty(t, snap.Recent)
}
