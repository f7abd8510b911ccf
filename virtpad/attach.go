package virtpad

import (
	"context"
	"log/slog"
	"time"
)

// AttachRetryInterval is the wait between attach attempts while the device
// backend is unavailable.
const AttachRetryInterval = 5 * time.Second

// AttachLoop creates a target with connect and attaches it to r, retrying on
// a fixed interval until an attempt succeeds or ctx is cancelled. A missing
// device backend leaves the reconciler in its unattached state; playback
// keeps running and reports the pad as disconnected.
func AttachLoop(ctx context.Context, r *Reconciler, interval time.Duration, logger *slog.Logger, connect func(context.Context) (Target, error)) {
	for {
		target, err := connect(ctx)
		if err == nil {
			r.Attach(target)
			logger.Info("virtual pad attached")
			return
		}
		if ctx.Err() != nil {
			return
		}
		logger.Warn("virtual pad unavailable, continuing without injection", "error", err, "retry_in", interval)
		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}
