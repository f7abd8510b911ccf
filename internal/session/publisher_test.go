package session_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/capture"
	"github.com/drazoxXD/steamdeck-Controls/input"
	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/internal/session"
	itesting "github.com/drazoxXD/steamdeck-Controls/internal/testing"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

func startPublisherPeer(t *testing.T, p *session.Publisher) *link.StreamConn {
	t.Helper()
	return startPublisherPeerTimeout(t, p, 0)
}

// startPublisherPeerTimeout additionally shortens the server-side write
// deadline when timeout is non-zero.
func startPublisherPeerTimeout(t *testing.T, p *session.Publisher, timeout time.Duration) *link.StreamConn {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	sc := link.NewStreamConn(serverSide, itesting.DiscardLogger(), itesting.NopRawLogger())
	if timeout > 0 {
		sc.SetWriteTimeout(timeout)
	}
	go p.HandleConn(sc)
	peer := link.NewStreamConn(clientSide, itesting.DiscardLogger(), itesting.NopRawLogger())
	t.Cleanup(func() { _ = peer.Close() })
	return peer
}

func TestPublisherSendsRosterOnConnect(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()
	source.SetDevices(capture.DeviceInfo{ID: "js0", Name: "Steam Deck Controller", Connected: true})

	p := session.NewPublisher(source, itesting.DiscardLogger())
	peer := startPublisherPeer(t, p)

	env, err := peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerList)
	require.Len(t, env.ControllerList, 1)
	assert.Equal(t, "Steam Deck Controller", env.ControllerList[0].Name)
	assert.Equal(t, "js0", env.ControllerList[0].UUID)
}

func TestPublisherAnswersPing(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()

	p := session.NewPublisher(source, itesting.DiscardLogger())
	peer := startPublisherPeer(t, p)

	// Roster arrives first.
	env, err := peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerList)

	require.NoError(t, peer.WriteEnvelope(protocol.NewPing()))
	env, err = peer.ReadEnvelope()
	require.NoError(t, err)
	assert.True(t, env.Pong)
}

func TestPublisherBroadcastsStateChanges(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()

	p := session.NewPublisher(source, itesting.DiscardLogger())
	peer := startPublisherPeer(t, p)

	env, err := peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerList)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	source.Emit(capture.Event{Device: "js0", Kind: capture.AxisChanged, Axis: input.AxisLeftStickX, Value: 0.5})

	env, err = peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerState)
	assert.InDelta(t, 0.5, env.ControllerState.LeftStickX, 1e-6)
	assert.NotZero(t, env.ControllerState.Timestamp)
}

func TestPublisherRosterCarriesDeviceIdentity(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()
	source.SetDevices(capture.DeviceInfo{
		ID:        "js0",
		Name:      "Steam Deck Controller",
		VendorID:  0x28de,
		ProductID: 0x1102,
		Connected: true,
	})

	p := session.NewPublisher(source, itesting.DiscardLogger())
	peer := startPublisherPeer(t, p)

	env, err := peer.ReadEnvelope()
	require.NoError(t, err)
	require.Len(t, env.ControllerList, 1)
	assert.Equal(t, uint16(0x28de), env.ControllerList[0].VendorID)
	assert.Equal(t, uint16(0x1102), env.ControllerList[0].ProductID)
}

func TestPublisherBroadcastsNeutralWhenLastControllerLeaves(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()
	source.SetDevices(capture.DeviceInfo{ID: "js0", Name: "pad", Connected: true})

	p := session.NewPublisher(source, itesting.DiscardLogger())
	peer := startPublisherPeer(t, p)

	env, err := peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerList)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	source.Emit(capture.Event{Device: "js0", Kind: capture.ButtonPressed, Button: input.BtnSouth})

	env, err = peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerState)
	require.True(t, env.ControllerState.ButtonA)

	// The only controller vanishes mid-press: the roster update is followed
	// by a neutral state so the held button does not stay down.
	source.SetDevices()
	source.Emit(capture.Event{Device: "js0", Kind: capture.Disconnected})

	env, err = peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerList)
	assert.Empty(t, env.ControllerList)

	env, err = peer.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerState)
	assert.False(t, env.ControllerState.ButtonA)
	assert.Zero(t, env.ControllerState.LeftStickX)
}

func TestPublisherDropsWedgedPeer(t *testing.T) {
	source := itesting.NewFakeSource()
	defer source.Close()

	p := session.NewPublisher(source, itesting.DiscardLogger())
	wedged := startPublisherPeerTimeout(t, p, 50*time.Millisecond)
	healthy := startPublisherPeerTimeout(t, p, 50*time.Millisecond)

	for _, peer := range []*link.StreamConn{wedged, healthy} {
		env, err := peer.ReadEnvelope()
		require.NoError(t, err)
		require.NotNil(t, env.ControllerList)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = p.Run(ctx) }()

	// wedged stops reading from here on. Its broadcast write hits the
	// deadline, it gets dropped, and healthy still receives the state.
	source.Emit(capture.Event{Device: "js0", Kind: capture.AxisChanged, Axis: input.AxisLeftStickX, Value: 1})

	env, err := healthy.ReadEnvelope()
	require.NoError(t, err)
	require.NotNil(t, env.ControllerState)
	assert.InDelta(t, 1, env.ControllerState.LeftStickX, 1e-6)

	wedgedErr := make(chan error, 1)
	go func() {
		_, err := wedged.ReadEnvelope()
		wedgedErr <- err
	}()
	select {
	case err := <-wedgedErr:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("wedged peer was never dropped")
	}
}
