package link_test

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	itesting "github.com/drazoxXD/steamdeck-Controls/internal/testing"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

func startWSServer(t *testing.T, handler func(*link.WSConn)) *link.WSServer {
	t.Helper()
	srv := link.NewWSServer("127.0.0.1:0", itesting.DiscardLogger(), itesting.NopRawLogger(), handler)
	require.NoError(t, srv.Start())
	t.Cleanup(srv.Close)
	return srv
}

func TestWSBatchDelivery(t *testing.T) {
	received := make(chan *protocol.InputBatch, 1)
	srv := startWSServer(t, func(conn *link.WSConn) {
		defer conn.Close()
		batch, err := conn.ReadBatch()
		if err != nil {
			return
		}
		received <- batch
	})

	conn, err := link.DialWS(context.Background(), "ws://"+srv.Addr()+"/", itesting.DiscardLogger(), itesting.NopRawLogger())
	require.NoError(t, err)
	defer conn.Close()

	sent := &protocol.InputBatch{
		Timestamp:    protocol.Now(),
		ButtonEvents: []protocol.ButtonEvent{{Button: "A (South)", Pressed: true}},
	}
	require.NoError(t, conn.WriteBatch(sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.ButtonEvents, got.ButtonEvents)
	case <-time.After(2 * time.Second):
		t.Fatal("batch never arrived")
	}
}

func TestWSMalformedTextDropped(t *testing.T) {
	received := make(chan *protocol.InputBatch, 1)
	srv := startWSServer(t, func(conn *link.WSConn) {
		defer conn.Close()
		batch, err := conn.ReadBatch()
		if err != nil {
			return
		}
		received <- batch
	})

	dialer := websocket.Dialer{HandshakeTimeout: time.Second}
	raw, _, err := dialer.Dial("ws://"+srv.Addr()+"/", nil)
	require.NoError(t, err)
	defer raw.Close()

	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte("not a batch")))

	good := &protocol.InputBatch{Timestamp: 1, AxisEvents: []protocol.AxisEvent{{Axis: "LT Axis", Value: 0.5}}}
	frame, err := protocol.EncodeFrame(good)
	require.NoError(t, err)
	require.NoError(t, raw.WriteMessage(websocket.TextMessage, frame[4:]))

	select {
	case got := <-received:
		assert.Equal(t, good.AxisEvents, got.AxisEvents)
	case <-time.After(2 * time.Second):
		t.Fatal("well-formed batch never arrived")
	}
}
