package library

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/spotify"
)

const (
	deviceRetryDelay       = 5 * time.Second
	deviceRefreshDelay     = 1 * time.Second
	nowPlayingRefreshDelay = 3 * time.Second
)

// DeviceSet partitions the known devices into the categories the player
// surface cares about. A device counts as a web player when its name
// contains "web player" case-insensitively, and as a desktop player when its
// reported type is "computer" but it is not a web player.
type DeviceSet struct {
	WebPlayer       *spotify.Device
	Desktop         *spotify.Device
	ActiveDevice    *spotify.Device
	ActiveComputer  *spotify.Device
	ActiveWebPlayer *spotify.Device
	ActiveDesktop   *spotify.Device
}

// Poller keeps the cached device list current. It serializes its cycles
// through an internal guard so a scheduled retry never overlaps a fresh
// poll, and suppresses cache writes when the device id set is unchanged.
type Poller struct {
	manager *Manager
	clock   clock.Clock
	logger  *log.Logger

	polling atomic.Bool
}

// NewPoller creates a device poller bound to a manager's store and remote.
func NewPoller(m *Manager) *Poller {
	return &Poller{
		manager: m,
		clock:   m.clock,
		logger:  m.logger,
	}
}

// Populate fetches the device list and reconciles it into the cache. When
// the remote rate-limits and retry is set, exactly one retry is scheduled
// after a fixed delay with retry cleared, bounding the chain at two
// attempts. A cycle that starts while another is in flight is dropped.
func (p *Poller) Populate(ctx context.Context, retry bool) error {
	if !p.polling.CompareAndSwap(false, true) {
		p.logger.Debug("device poll already in flight, skipping")
		return nil
	}
	defer p.polling.Store(false)

	devices, err := p.manager.remote.Devices(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrRateLimited) && retry {
			p.logger.Warn("device fetch rate limited, scheduling retry", "delay", deviceRetryDelay)
			p.clock.AfterFunc(deviceRetryDelay, func() {
				if err := p.Populate(ctx, false); err != nil {
					p.logger.Error("device poll retry failed", "error", err)
				}
			})
			return nil
		}
		return err
	}

	if !deviceSetChanged(p.manager.store.Devices(), devices) {
		return nil
	}

	p.manager.store.SetDevices(devices)
	p.logger.Info("device set changed", "count", len(devices))

	p.clock.AfterFunc(deviceRefreshDelay, func() {
		p.manager.notifier.Refresh(ViewDevices)
	})
	p.clock.AfterFunc(nowPlayingRefreshDelay, func() {
		if err := p.manager.PopulatePlayerContext(ctx); err != nil {
			p.logger.Warn("player context refresh failed", "error", err)
			return
		}
		p.manager.notifier.Refresh("")
	})
	return nil
}

// Watch polls the device list on a fixed interval until the context is
// cancelled. Each cycle allows one rate-limit retry.
func (p *Poller) Watch(ctx context.Context, interval time.Duration) error {
	ticker := p.clock.Ticker(interval)
	defer ticker.Stop()

	if err := p.Populate(ctx, true); err != nil {
		p.logger.Error("device poll failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.Populate(ctx, true); err != nil {
				p.logger.Error("device poll failed", "error", err)
			}
		}
	}
}

// DeviceSet classifies the cached devices.
func (p *Poller) DeviceSet() DeviceSet {
	var set DeviceSet
	devices := p.manager.store.Devices()

	for i := range devices {
		d := &devices[i]
		computer := strings.EqualFold(d.Type, "computer")
		web := strings.Contains(strings.ToLower(d.Name), "web player")
		desktop := !web && computer

		if web && set.WebPlayer == nil {
			set.WebPlayer = d
		}
		if desktop && set.Desktop == nil {
			set.Desktop = d
		}
		if d.IsActive {
			if set.ActiveDevice == nil {
				set.ActiveDevice = d
			}
			if computer && set.ActiveComputer == nil {
				set.ActiveComputer = d
			}
			if web && computer && set.ActiveWebPlayer == nil {
				set.ActiveWebPlayer = d
			}
			if desktop && set.ActiveDesktop == nil {
				set.ActiveDesktop = d
			}
		}
	}
	return set
}

// BestActiveDevice picks a playback target: any active device first, then a
// desktop player, then a web player. Returns nil when nothing qualifies.
func (p *Poller) BestActiveDevice() *spotify.Device {
	set := p.DeviceSet()
	switch {
	case set.ActiveDevice != nil:
		return set.ActiveDevice
	case set.Desktop != nil:
		return set.Desktop
	case set.WebPlayer != nil:
		return set.WebPlayer
	default:
		return nil
	}
}

// deviceSetChanged compares device id sets, ignoring order and every other
// field.
func deviceSetChanged(current, incoming []spotify.Device) bool {
	if len(current) != len(incoming) {
		return true
	}
	ids := make(map[string]struct{}, len(current))
	for _, d := range current {
		ids[d.ID] = struct{}{}
	}
	for _, d := range incoming {
		if _, ok := ids[d.ID]; !ok {
			return true
		}
	}
	return false
}
