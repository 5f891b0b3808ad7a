package library

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/spotify"
)

func (f *fakeRemote) deviceCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deviceCalls
}

func (f *fakeRemote) playerCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.playerCalls
}

func testPoller(remote RemoteService, mock *clock.Mock) (*Poller, *Manager, *recordingNotifier) {
	notifier := &recordingNotifier{}
	m := NewManager(ManagerOpts{Remote: remote, Notifier: notifier, Clock: mock})
	return NewPoller(m), m, notifier
}

func TestPollerPopulate(t *testing.T) {
	ctx := context.Background()

	t.Run("Stores On First Fetch And Defers The Redraw", func(t *testing.T) {
		remote := newFakeRemote()
		remote.devices = []spotify.Device{{ID: "d1", Name: "Office"}}
		mock := clock.NewMock()
		poller, m, notifier := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(m.Store().Devices()) != 1 {
			t.Errorf("expected 1 device cached, got %d", len(m.Store().Devices()))
		}
		if notifier.count(ViewDevices) != 0 {
			t.Errorf("expected no immediate notification, got %d", notifier.count(ViewDevices))
		}

		mock.Add(deviceRefreshDelay)
		waitFor(t, func() bool { return notifier.count(ViewDevices) == 1 })
	})

	t.Run("Unchanged Id Set Suppresses Notification", func(t *testing.T) {
		remote := newFakeRemote()
		remote.devices = []spotify.Device{{ID: "d1"}, {ID: "d2"}}
		mock := clock.NewMock()
		poller, _, notifier := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}
		mock.Add(deviceRefreshDelay)
		waitFor(t, func() bool { return notifier.count(ViewDevices) == 1 })

		// Same ids, different order and different activity flags.
		remote.mu.Lock()
		remote.devices = []spotify.Device{{ID: "d2", IsActive: true}, {ID: "d1"}}
		remote.mu.Unlock()

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}
		mock.Add(deviceRefreshDelay)
		time.Sleep(10 * time.Millisecond)
		if notifier.count(ViewDevices) != 1 {
			t.Errorf("expected no second notification, got %d", notifier.count(ViewDevices))
		}
	})

	t.Run("Changed Id Set Replaces Cache", func(t *testing.T) {
		remote := newFakeRemote()
		remote.devices = []spotify.Device{{ID: "d1"}}
		mock := clock.NewMock()
		poller, m, notifier := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}
		mock.Add(deviceRefreshDelay)
		waitFor(t, func() bool { return notifier.count(ViewDevices) == 1 })

		remote.mu.Lock()
		remote.devices = []spotify.Device{{ID: "d1"}, {ID: "d3"}}
		remote.mu.Unlock()

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}
		if len(m.Store().Devices()) != 2 {
			t.Errorf("expected cache replaced, got %d devices", len(m.Store().Devices()))
		}
		mock.Add(deviceRefreshDelay)
		waitFor(t, func() bool { return notifier.count(ViewDevices) == 2 })
	})

	t.Run("Rate Limit Schedules Exactly One Retry", func(t *testing.T) {
		remote := newFakeRemote()
		remote.devices = []spotify.Device{{ID: "d1"}}
		remote.deviceErrs = []error{shared.ErrRateLimited}
		mock := clock.NewMock()
		poller, m, _ := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatalf("expected rate limit swallowed, got %v", err)
		}
		if remote.deviceCallCount() != 1 {
			t.Fatalf("expected 1 attempt before retry, got %d", remote.deviceCallCount())
		}

		mock.Add(deviceRetryDelay)
		waitFor(t, func() bool { return remote.deviceCallCount() == 2 })
		waitFor(t, func() bool { return len(m.Store().Devices()) == 1 })
	})

	t.Run("Retry Does Not Chain", func(t *testing.T) {
		remote := newFakeRemote()
		remote.deviceErrs = []error{shared.ErrRateLimited, shared.ErrRateLimited}
		mock := clock.NewMock()
		poller, _, _ := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}

		mock.Add(deviceRetryDelay)
		waitFor(t, func() bool { return remote.deviceCallCount() == 2 })

		mock.Add(10 * deviceRetryDelay)
		time.Sleep(10 * time.Millisecond)
		if remote.deviceCallCount() != 2 {
			t.Errorf("expected the retry chain bounded at two attempts, got %d", remote.deviceCallCount())
		}
	})

	t.Run("Rate Limit Without Retry Surfaces", func(t *testing.T) {
		remote := newFakeRemote()
		remote.deviceErrs = []error{shared.ErrRateLimited}
		poller, _, _ := testPoller(remote, clock.NewMock())

		if err := poller.Populate(ctx, false); err == nil {
			t.Error("expected rate limit error")
		}
	})

	t.Run("Change Schedules Redraw And Player Refresh", func(t *testing.T) {
		remote := newFakeRemote()
		remote.devices = []spotify.Device{{ID: "d1"}}
		remote.player = &spotify.PlayerContext{IsPlaying: true}
		mock := clock.NewMock()
		poller, m, notifier := testPoller(remote, mock)

		if err := poller.Populate(ctx, true); err != nil {
			t.Fatal(err)
		}

		mock.Add(deviceRefreshDelay)
		waitFor(t, func() bool { return notifier.count(ViewDevices) == 1 })

		mock.Add(nowPlayingRefreshDelay - deviceRefreshDelay)
		waitFor(t, func() bool { return remote.playerCallCount() == 1 })
		waitFor(t, func() bool { return m.Store().PlayerContext() != nil })
	})
}

func TestPollerWatch(t *testing.T) {
	remote := newFakeRemote()
	remote.devices = []spotify.Device{{ID: "d1"}}
	mock := clock.NewMock()
	poller, _, _ := testPoller(remote, mock)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- poller.Watch(ctx, time.Minute) }()

	waitFor(t, func() bool { return remote.deviceCallCount() == 1 })

	mock.Add(time.Minute)
	waitFor(t, func() bool { return remote.deviceCallCount() == 2 })

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestDeviceSet(t *testing.T) {
	remote := newFakeRemote()
	poller, m, _ := testPoller(remote, clock.NewMock())

	t.Run("Classification", func(t *testing.T) {
		m.Store().SetDevices([]spotify.Device{
			{ID: "d1", Name: "Web Player (Chrome)", Type: "Computer", IsActive: true},
			{ID: "d2", Name: "Home Desktop", Type: "Computer"},
			{ID: "d3", Name: "Phone", Type: "Smartphone"},
		})

		set := poller.DeviceSet()
		if set.WebPlayer == nil || set.WebPlayer.ID != "d1" {
			t.Error("expected d1 classified as web player")
		}
		if set.Desktop == nil || set.Desktop.ID != "d2" {
			t.Error("expected d2 classified as desktop")
		}
		if set.ActiveDevice == nil || set.ActiveDevice.ID != "d1" {
			t.Error("expected d1 as active device")
		}
		if set.ActiveWebPlayer == nil || set.ActiveWebPlayer.ID != "d1" {
			t.Error("expected d1 as active web player")
		}
		if set.ActiveDesktop != nil {
			t.Error("expected no active desktop")
		}
	})

	t.Run("Active Web Player Requires Computer Type", func(t *testing.T) {
		m.Store().SetDevices([]spotify.Device{
			{ID: "cast", Name: "Web Player (Chromecast)", Type: "CastVideo", IsActive: true},
		})

		set := poller.DeviceSet()
		if set.WebPlayer == nil || set.WebPlayer.ID != "cast" {
			t.Error("expected cast device still classified as web player")
		}
		if set.ActiveWebPlayer != nil {
			t.Error("expected no active web player for a non-computer device")
		}
		if set.ActiveDevice == nil || set.ActiveDevice.ID != "cast" {
			t.Error("expected cast device as active device")
		}
	})

	t.Run("Best Active Device Priority", func(t *testing.T) {
		m.Store().SetDevices([]spotify.Device{
			{ID: "web", Name: "Web Player (Firefox)", Type: "Computer"},
			{ID: "desk", Name: "Studio", Type: "Computer"},
		})
		if best := poller.BestActiveDevice(); best == nil || best.ID != "desk" {
			t.Error("expected desktop preferred over web player")
		}

		m.Store().SetDevices([]spotify.Device{
			{ID: "web", Name: "Web Player (Firefox)", Type: "Computer"},
			{ID: "phone", Name: "Phone", Type: "Smartphone", IsActive: true},
		})
		if best := poller.BestActiveDevice(); best == nil || best.ID != "phone" {
			t.Error("expected active device preferred over everything")
		}

		m.Store().SetDevices(nil)
		if best := poller.BestActiveDevice(); best != nil {
			t.Errorf("expected nil with no devices, got %v", best)
		}
	})
}
