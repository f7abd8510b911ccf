package virtpad_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/virtpad"
)

func TestAttachLoopRetriesUntilBackendAppears(t *testing.T) {
	target := &fakeTarget{}
	r := virtpad.New(testLogger())

	attempts := 0
	connect := func(context.Context) (virtpad.Target, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("backend not running")
		}
		return target, nil
	}

	virtpad.AttachLoop(context.Background(), r, time.Millisecond, testLogger(), connect)

	assert.Equal(t, 3, attempts)
	r.ApplyButton("A (South)", true)
	require.NoError(t, r.Flush())
	require.Len(t, target.frames, 1)
	assert.Equal(t, virtpad.ButtonA, target.frames[0].Buttons)
}

func TestAttachLoopStopsOnCancel(t *testing.T) {
	r := virtpad.New(testLogger())
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	connect := func(context.Context) (virtpad.Target, error) {
		attempts++
		cancel()
		return nil, errors.New("backend not running")
	}

	done := make(chan struct{})
	go func() {
		virtpad.AttachLoop(ctx, r, time.Hour, testLogger(), connect)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("attach loop did not stop on cancel")
	}
	assert.Equal(t, 1, attempts)

	// Still the silent no-I/O state.
	require.NoError(t, r.Flush())
	assert.False(t, r.IsConnected())
}
