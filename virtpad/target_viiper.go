package virtpad

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Alia5/VIIPER/apiclient"
	"github.com/Alia5/VIIPER/device/xbox360"
)

// ViiperTarget injects frames into a virtual xbox360 device hosted by a
// VIIPER server.
type ViiperTarget struct {
	api        *apiclient.Client
	stream     *apiclient.DeviceStream
	logger     *slog.Logger
	createdBus bool
	busID      uint32
}

// NewViiperTarget connects to the VIIPER API at addr, ensures a bus exists,
// creates an xbox360 device on it and opens its input stream. The returned
// target is ready for Push.
func NewViiperTarget(ctx context.Context, addr string, logger *slog.Logger) (*ViiperTarget, error) {
	api := apiclient.New(addr)

	busesResp, err := api.BusListCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}
	var busID uint32
	createdBus := false
	if len(busesResp.Buses) == 0 {
		var createErr error
		for try := uint32(1); try <= 100; try++ {
			if r, err := api.BusCreateCtx(ctx, try); err == nil {
				busID = r.BusID
				createdBus = true
				break
			} else {
				createErr = err
			}
		}
		if busID == 0 {
			return nil, fmt.Errorf("create bus: %w", createErr)
		}
	} else {
		busID = busesResp.Buses[0]
		for _, b := range busesResp.Buses[1:] {
			if b < busID {
				busID = b
			}
		}
	}

	stream, addResp, err := api.AddDeviceAndConnect(ctx, busID, "xbox360", nil)
	if err != nil {
		if createdBus {
			_, _ = api.BusRemoveCtx(ctx, busID)
		}
		return nil, fmt.Errorf("create xbox360 device: %w", err)
	}
	logger.Info("virtual pad plugged in", "bus", addResp.BusID, "device", addResp.DevId)

	return &ViiperTarget{
		api:        api,
		stream:     stream,
		logger:     logger,
		createdBus: createdBus,
		busID:      busID,
	}, nil
}

// Push writes one full input report to the device stream.
func (t *ViiperTarget) Push(f Frame) error {
	state := &xbox360.InputState{
		Buttons: uint32(f.Buttons),
		LT:      f.LT,
		RT:      f.RT,
		LX:      f.LX,
		LY:      f.LY,
		RX:      f.RX,
		RY:      f.RY,
	}
	if err := t.stream.WriteBinary(state); err != nil {
		return fmt.Errorf("write input report: %w", err)
	}
	return nil
}

// Close unplugs the device and removes the bus if this target created it.
func (t *ViiperTarget) Close() error {
	ctx := context.Background()
	if _, err := t.api.DeviceRemoveCtx(ctx, t.stream.BusID, t.stream.DevID); err != nil {
		t.logger.Warn("device remove failed", "error", err)
	}
	if t.createdBus {
		if _, err := t.api.BusRemoveCtx(ctx, t.busID); err != nil {
			t.logger.Warn("bus remove failed", "error", err)
		}
	}
	return t.stream.Close()
}
