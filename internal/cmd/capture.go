package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/drazoxXD/steamdeck-Controls/capture"
	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/internal/session"
)

// Capture runs on the host with the physical controller.
type Capture struct {
	Server     string `help:"Playback host websocket URL (ws link)" default:"ws://localhost:12345/" env:"DECKSTREAM_SERVER"`
	Link       string `help:"Link transport" enum:"ws,stream" default:"ws" env:"DECKSTREAM_LINK"`
	ListenAddr string `help:"Listen address for playback peers (stream link)" default:":12345" env:"DECKSTREAM_LISTEN_ADDR"`
}

// Run is called by Kong when the capture command is executed.
func (c *Capture) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := capture.NewBusSource(logger)
	if err != nil {
		return err
	}
	defer source.Close()

	switch c.Link {
	case "ws":
		logger.Info("Starting capture", "server", c.Server)
		capturer := session.NewCapturer(source, session.WSConnector(c.Server, logger, rawLogger), logger)
		return capturer.Run(ctx)
	case "stream":
		publisher := session.NewPublisher(source, logger)
		srv := link.NewStreamServer(c.ListenAddr, logger, rawLogger, publisher.HandleConn)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Close()
		return publisher.Run(ctx)
	}
	return errors.New("unknown link transport: " + c.Link)
}
