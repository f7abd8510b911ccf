package session

import (
	"context"
	"log/slog"

	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/protocol"
)

type wsSender struct{ conn *link.WSConn }

func (s wsSender) SendBatch(b *protocol.InputBatch) error { return s.conn.WriteBatch(b) }
func (s wsSender) Close() error                           { return s.conn.Close() }

// WSConnector returns a Connector that dials the playback host's websocket
// endpoint.
func WSConnector(url string, logger *slog.Logger, raw log.RawLogger) Connector {
	return func(ctx context.Context) (Sender, error) {
		conn, err := link.DialWS(ctx, url, logger, raw)
		if err != nil {
			return nil, err
		}
		return wsSender{conn: conn}, nil
	}
}
