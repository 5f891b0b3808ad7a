package main

import (
	"context"
	"fmt"
	"time"

	"github.com/quietriver/cadence/internal/spotify"
	"github.com/urfave/cli/v3"
)

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "devices",
		Aliases: []string{"dev"},
		Usage:   "Inspect and watch playback devices",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playback devices (one rate-limit retry allowed)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.DevicesList,
			},
			{
				Name:  "watch",
				Usage: "Poll the device list until interrupted",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Aliases: []string{"i"},
						Usage:   "Poll interval (defaults to the configured value)",
					},
				},
				Action: r.DevicesWatch,
			},
			{
				Name:   "best",
				Usage:  "Show the preferred playback target",
				Action: r.DevicesBest,
			},
		},
	}
}

func playerCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "player",
		Usage: "Inspect playback state",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Show the current playback snapshot",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.PlayerStatus,
			},
		},
	}
}

// DevicesList reconciles the device cache once and prints it.
func (r *Runner) DevicesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	if err := r.poller.Populate(ctx, true); err != nil {
		return err
	}

	devices := r.store.Devices()
	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}

	if len(devices) == 0 {
		return r.writePlain("No devices registered\n")
	}
	for _, d := range devices {
		r.writePlain("%s\n", formatDevice(d))
	}
	return nil
}

// DevicesWatch polls on an interval, logging device set changes until the
// context is cancelled (ctrl+c).
func (r *Runner) DevicesWatch(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	interval := cmd.Duration("interval")
	if interval <= 0 {
		interval = r.config.Player.PollInterval()
	}

	r.writePlain("Watching devices every %s (ctrl+c to stop)\n", interval)
	if err := r.poller.Watch(ctx, interval); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// DevicesBest prints the preferred playback target, if any.
func (r *Runner) DevicesBest(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	if err := r.poller.Populate(ctx, true); err != nil {
		return err
	}

	best := r.poller.BestActiveDevice()
	if best == nil {
		return r.writePlain("No usable playback device\n")
	}
	return r.writePlain("%s\n", formatDevice(*best))
}

// PlayerStatus fetches and prints the current playback snapshot.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	if err := r.manager.PopulatePlayerContext(ctx); err != nil {
		return err
	}

	pc := r.store.PlayerContext()
	if pc == nil {
		return r.writePlain("Nothing playing\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(pc, cmd.Bool("pretty"))
	}

	state := "paused"
	if pc.IsPlaying {
		state = "playing"
	}
	if pc.Item != nil {
		r.writePlain("%s: %s\n", state, pc.Item.Name)
		r.writePlain("progress: %s / %s\n",
			(time.Duration(pc.ProgressMS) * time.Millisecond).Round(time.Second),
			(time.Duration(pc.Item.DurationMS) * time.Millisecond).Round(time.Second))
	} else {
		r.writePlain("%s\n", state)
	}
	if pc.RepeatState != "" {
		r.writePlain("repeat: %s  shuffle: %v\n", pc.RepeatState, pc.ShuffleState)
	}
	if repeating, err := r.manager.IsTrackRepeating(ctx); err == nil && repeating {
		r.writePlain("looping the current track\n")
	}
	if pc.Device != nil {
		r.writePlain("device: %s\n", formatDevice(*pc.Device))
	}
	return nil
}

func formatDevice(d spotify.Device) string {
	status := ""
	if d.IsActive {
		status = "  [active]"
	}
	return fmt.Sprintf("%s (%s, volume %d%%)%s", d.Name, d.Type, d.VolumePercent, status)
}
