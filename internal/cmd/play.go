package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drazoxXD/steamdeck-Controls/internal/link"
	"github.com/drazoxXD/steamdeck-Controls/internal/log"
	"github.com/drazoxXD/steamdeck-Controls/internal/session"
	"github.com/drazoxXD/steamdeck-Controls/internal/util"
	"github.com/drazoxXD/steamdeck-Controls/virtpad"
)

// Play runs on the host that exposes the virtual pad.
type Play struct {
	ListenAddr   string        `help:"Listen address for capture peers (ws link)" default:":12345" env:"DECKSTREAM_PLAY_ADDR"`
	Link         string        `help:"Link transport" enum:"ws,stream" default:"ws" env:"DECKSTREAM_LINK"`
	CaptureAddr  string        `help:"Capture host address to connect to (stream link)" default:"localhost:12345" env:"DECKSTREAM_CAPTURE_ADDR"`
	ViiperAddr   string        `help:"VIIPER API server address" default:"localhost:3242" env:"DECKSTREAM_VIIPER_ADDR"`
	NoVirtualPad bool          `help:"Receive and log input without creating a virtual pad"`
	StatsEvery   time.Duration `help:"Interval for delay statistics logging (0 disables)" default:"10s"`
}

// Run is called by Kong when the play command is executed.
func (p *Play) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pad := virtpad.New(logger)
	if !p.NoVirtualPad {
		// An unreachable device backend is not fatal: playback keeps
		// receiving input with the pad disconnected and attaches once the
		// backend comes up.
		go virtpad.AttachLoop(ctx, pad, virtpad.AttachRetryInterval, logger, func(ctx context.Context) (virtpad.Target, error) {
			return virtpad.NewViiperTarget(ctx, p.ViiperAddr, logger)
		})
		defer func() {
			if err := pad.Detach(); err != nil {
				logger.Warn("virtual pad teardown failed", "error", err)
			}
		}()
	}

	stats := &session.Stats{}
	playback := session.NewPlayback(pad, stats, logger)

	if util.IsRunFromGUI() {
		go func() {
			time.Sleep(250 * time.Millisecond)
			util.HideConsoleWindow()
		}()
	}

	if p.StatsEvery > 0 {
		go logStats(ctx, stats, logger, p.StatsEvery)
	}

	switch p.Link {
	case "ws":
		logger.Info("Starting playback", "listen", p.ListenAddr)
		srv := link.NewWSServer(p.ListenAddr, logger, rawLogger, playback.HandleWSConn)
		if err := srv.Start(); err != nil {
			return err
		}
		defer srv.Close()
		<-ctx.Done()
		return nil
	case "stream":
		logger.Info("Starting playback", "capture", p.CaptureAddr)
		return playback.RunStreamClient(ctx, p.CaptureAddr, logger, rawLogger)
	}
	return errors.New("unknown link transport: " + p.Link)
}

func logStats(ctx context.Context, stats *session.Stats, logger *slog.Logger, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := stats.Snapshot()
			if snap.Count == 0 {
				continue
			}
			logger.Info("link delay",
				"events", snap.Count,
				"clients", snap.Clients,
				"min_ms", snap.MinDelayMS,
				"avg_ms", snap.AvgDelayMS,
				"max_ms", snap.MaxDelayMS)
		}
	}
}
