package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/urfave/cli/v3"
)

func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "Browse and manage the playlist collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List playlists (cached unless --refresh)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "refresh", Usage: "Bypass the cache and refetch"},
					&cli.BoolFlag{Name: "alphabetical", Aliases: []string{"a"}, Usage: "Sort by name instead of fetch order"},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.PlaylistsList,
			},
			{
				Name:  "tracks",
				Usage: "List the tracks of one playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.PlaylistTracks,
			},
			{
				Name:  "liked",
				Usage: "List your liked songs",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
					&cli.BoolFlag{Name: "pretty", Usage: "Pretty-print output"},
				},
				Action: r.PlaylistsLiked,
			},
			{
				Name:   "top40",
				Usage:  "Show the curated chart playlist",
				Action: r.PlaylistsTop40,
			},
			{
				Name:  "follow",
				Usage: "Follow a playlist by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsFollow,
			},
			{
				Name:  "unfollow",
				Usage: "Unfollow a playlist by id",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistsUnfollow,
			},
			{
				Name:  "create",
				Usage: "Create a playlist, optionally seeded with track URIs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "public", Usage: "Create as public"},
					&cli.StringFlag{Name: "tracks", Usage: "Comma-separated track URIs to add"},
				},
				Action: r.PlaylistsCreate,
			},
			{
				Name:  "remove-track",
				Usage: "Remove a track from a playlist (liked songs use the pseudo id)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "playlist"},
					&cli.StringArg{Name: "track"},
				},
				Action: r.PlaylistsRemoveTrack,
			},
		},
	}
}

// PlaylistsList prints the playlist collection through the cache layer.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	playlists, err := r.manager.Playlists(ctx, cmd.Bool("refresh"))
	if err != nil {
		return err
	}

	if cmd.Bool("alphabetical") != r.store.SortAlphabetically() {
		r.manager.SetSort(cmd.Bool("alphabetical"))
		playlists, _ = r.store.Playlists()
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists. Are you authorized? Try: cadence auth status\n")
	}

	r.writePlain("%s\n", library.LikedSongsPlaylistName)
	for _, p := range playlists {
		r.writePlain("%s  (%d tracks)  [%s]\n", p.Name, p.TrackTotal, p.ID)
	}
	return nil
}

// PlaylistTracks prints one playlist's tracks, fetching only on a cache miss.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	tracks, err := r.manager.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	if entry, ok := r.manager.PlaylistByID(playlistID); ok {
		r.writePlain("%s (%d tracks)\n", entry.Name, len(tracks))
	}
	return r.printTracks(tracks)
}

// PlaylistsLiked prints the liked-songs collection.
func (r *Runner) PlaylistsLiked(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	tracks, err := r.manager.LikedSongs(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	return r.printTracks(tracks)
}

// PlaylistsTop40 fetches and prints the curated chart playlist.
func (r *Runner) PlaylistsTop40(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	entry, err := r.manager.Top40(ctx)
	if err != nil {
		return err
	}

	r.writePlain("%s  (%d tracks)\n\n", entry.Name, entry.TrackTotal)

	tracks, _ := r.store.PlaylistTracks(entry.ID)
	return r.printTracks(tracks)
}

// PlaylistsFollow follows a playlist and refreshes the collection.
func (r *Runner) PlaylistsFollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	if err := r.manager.FollowPlaylist(ctx, library.PlaylistItem{ID: playlistID, Name: playlistID}); err != nil {
		return err
	}

	return r.writePlain("✓ Followed %s\n", playlistID)
}

// PlaylistsUnfollow unfollows a playlist and refreshes the collection.
func (r *Runner) PlaylistsUnfollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	playlistID := cmd.StringArg("id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	if err := r.manager.UnfollowPlaylist(ctx, library.PlaylistItem{ID: playlistID, Name: playlistID}); err != nil {
		return err
	}

	return r.writePlain("✓ Unfollowed %s\n", playlistID)
}

// PlaylistsCreate creates a playlist and optionally seeds it.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	var uris []string
	if raw := cmd.String("tracks"); raw != "" {
		for _, uri := range strings.Split(raw, ",") {
			if uri = strings.TrimSpace(uri); uri != "" {
				uris = append(uris, uri)
			}
		}
	}

	created, err := r.manager.CreatePlaylist(ctx, name, cmd.Bool("public"), uris)
	if err != nil {
		return err
	}

	return r.writePlain("✓ Created %s [%s]\n", created.Name, created.ID)
}

// PlaylistsRemoveTrack removes a track, routing liked-songs removals to the
// library mutation.
func (r *Runner) PlaylistsRemoveTrack(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireClient(); err != nil {
		return err
	}

	playlistID := cmd.StringArg("playlist")
	trackID := cmd.StringArg("track")
	if playlistID == "" || trackID == "" {
		return fmt.Errorf("%w: playlist and track ids", shared.ErrMissingArgument)
	}

	item := library.PlaylistItem{ID: trackID, PlaylistID: playlistID}
	if err := r.manager.RemoveTrackFromPlaylist(ctx, item); err != nil {
		return err
	}

	return r.writePlain("✓ Removed %s from %s\n", trackID, playlistID)
}

func (r *Runner) printTracks(tracks []library.PlaylistItem) error {
	if len(tracks) == 0 {
		return r.writePlain("No tracks\n")
	}
	for _, t := range tracks {
		r.writePlain("%3d. %s\n", t.Position, t.Tooltip)
	}
	return nil
}
