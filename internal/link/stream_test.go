package link_test

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	itesting "github.com/drazoxXD/steamdeck-Controls/internal/testing"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

func startStreamServer(t *testing.T, handler func(*link.StreamConn)) *link.StreamServer {
	t.Helper()
	srv := link.NewStreamServer("127.0.0.1:0", itesting.DiscardLogger(), itesting.NopRawLogger(), handler)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func dialStream(t *testing.T, addr string) *link.StreamConn {
	t.Helper()
	conn, err := link.Dial(context.Background(), addr, itesting.DiscardLogger(), itesting.NopRawLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestStreamPingPong(t *testing.T) {
	srv := startStreamServer(t, func(conn *link.StreamConn) {
		defer conn.Close()
		for {
			env, err := conn.ReadEnvelope()
			if err != nil {
				return
			}
			if env.Ping {
				if err := conn.WriteEnvelope(protocol.NewPong()); err != nil {
					return
				}
			}
		}
	})

	conn := dialStream(t, srv.Addr())
	require.NoError(t, conn.WriteEnvelope(protocol.NewPing()))

	env, err := conn.ReadEnvelope()
	require.NoError(t, err)
	assert.True(t, env.Pong)
}

func TestStreamMalformedMessageDropped(t *testing.T) {
	received := make(chan *protocol.Envelope, 1)
	srv := startStreamServer(t, func(conn *link.StreamConn) {
		defer conn.Close()
		env, err := conn.ReadEnvelope()
		if err != nil {
			return
		}
		received <- env
	})

	raw, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	defer raw.Close()

	// A frame that decodes as garbage must be skipped, not end the session.
	bad := []byte(`{broken`)
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(bad)))
	_, err = raw.Write(append(lenBytes[:], bad...))
	require.NoError(t, err)

	frame, err := protocol.EncodeFrame(protocol.NewPing())
	require.NoError(t, err)
	_, err = raw.Write(frame)
	require.NoError(t, err)

	select {
	case env := <-received:
		assert.True(t, env.Ping)
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the well-formed message")
	}
}

func TestStreamTruncatedFrameEndsSessionOnly(t *testing.T) {
	errs := make(chan error, 2)
	srv := startStreamServer(t, func(conn *link.StreamConn) {
		defer conn.Close()
		for {
			_, err := conn.ReadEnvelope()
			if err != nil {
				errs <- err
				return
			}
		}
	})

	// First peer claims 10 bytes, sends 3, disappears.
	raw, err := net.Dial("tcp", srv.Addr())
	require.NoError(t, err)
	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], 10)
	_, err = raw.Write(append(lenBytes[:], 'a', 'b', 'c'))
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not end on truncated frame")
	}

	// The listener must survive and serve the next peer.
	conn := dialStream(t, srv.Addr())
	require.NoError(t, conn.WriteEnvelope(protocol.NewPing()))
	require.NoError(t, conn.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("second session never ran")
	}
}

func TestStreamWriteTimesOutOnWedgedPeer(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer clientSide.Close()

	conn := link.NewStreamConn(serverSide, itesting.DiscardLogger(), itesting.NopRawLogger())
	defer conn.Close()
	conn.SetWriteTimeout(50 * time.Millisecond)

	// The peer never reads; the write must fail at the deadline instead of
	// blocking forever.
	start := time.Now()
	err := conn.WriteEnvelope(protocol.NewPing())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrDeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestStreamCleanCloseIsEOF(t *testing.T) {
	errs := make(chan error, 1)
	srv := startStreamServer(t, func(conn *link.StreamConn) {
		defer conn.Close()
		_, err := conn.ReadEnvelope()
		errs <- err
	})

	conn := dialStream(t, srv.Addr())
	require.NoError(t, conn.Close())

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, io.EOF)
	case <-time.After(2 * time.Second):
		t.Fatal("session never observed the close")
	}
}
