package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/urfave/cli/v3"
)

func recsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recs",
		Aliases: []string{"recommendations"},
		Usage:   "Generate recommendation sets from your listening data",
		Commands: []*cli.Command{
			{
				Name:   "presets",
				Usage:  "List the built-in recommendation presets",
				Action: r.RecsPresets,
			},
			{
				Name:  "preset",
				Usage: "Generate a set from a preset (default Familiar)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "genres", Usage: "Comma-separated genre seeds (replaces track seeds)"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.RecsPreset,
			},
			{
				Name:  "track",
				Usage: "Generate a set seeded by one track",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.RecsTrack,
			},
			{
				Name:  "album",
				Usage: "Show an album's tracklist in the recommendation pane",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.RecsAlbum,
			},
			{
				Name:   "again",
				Usage:  "Regenerate the last set at the next seed offset",
				Action: r.RecsAgain,
			},
		},
	}
}

// RecsPresets lists the built-in presets with their feature constraints.
func (r *Runner) RecsPresets(ctx context.Context, cmd *cli.Command) error {
	for _, p := range r.recs.Presets() {
		if len(p.Features) == 0 {
			r.writePlain("%s\n", p.Label)
			continue
		}
		parts := make([]string, 0, len(p.Features))
		for k, v := range p.Features {
			parts = append(parts, fmt.Sprintf("%s=%g", k, v))
		}
		r.writePlain("%s  (%s)\n", p.Label, strings.Join(parts, ", "))
	}
	return nil
}

// RecsPreset generates a recommendation set from a named preset.
func (r *Runner) RecsPreset(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		name = "Familiar"
	}

	req, ok := r.recs.Preset(name)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q", shared.ErrInvalidArgument, name)
	}

	if raw := cmd.String("genres"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				req.SeedGenres = append(req.SeedGenres, g)
			}
		}
	}

	rec, err := r.recs.Recommend(ctx, req)
	if err != nil {
		return err
	}

	return r.printRecommendation(rec, cmd.Bool("json"), cmd.Bool("pretty"))
}

// RecsTrack generates a set seeded by one specific track.
func (r *Runner) RecsTrack(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	trackID := cmd.StringArg("id")
	if trackID == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	rec, err := r.recs.Recommend(ctx, r.recs.ForTrack(library.PlaylistItem{ID: trackID, Name: trackID}))
	if err != nil {
		return err
	}

	return r.printRecommendation(rec, cmd.Bool("json"), cmd.Bool("pretty"))
}

// RecsAlbum pivots the recommendation pane into one album's tracklist.
func (r *Runner) RecsAlbum(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	albumID := cmd.StringArg("id")
	if albumID == "" {
		return fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	rec, err := r.recs.ShowAlbum(ctx, library.PlaylistItem{AlbumID: albumID})
	if err != nil {
		return err
	}

	return r.printRecommendation(rec, cmd.Bool("json"), cmd.Bool("pretty"))
}

// RecsAgain replays the cached request at the next offset.
func (r *Runner) RecsAgain(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	rec, err := r.recs.Regenerate(ctx)
	if err != nil {
		return err
	}

	return r.printRecommendation(rec, false, false)
}

func (r *Runner) printRecommendation(rec *library.Recommendation, asJSON, pretty bool) error {
	if asJSON {
		return r.writeJSON(rec, pretty)
	}

	r.writePlain("%s\n\n", rec.Label)
	return r.printTracks(rec.Tracks)
}
