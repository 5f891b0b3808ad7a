package ui

import (
	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/spotify"
)

// RefreshMsg tells the TUI that cached data changed outside the update loop.
// The device poller and the cache layer send it through the program's Send
// method; an empty View means "redraw whatever is showing".
type RefreshMsg struct {
	View string
}

type playlistsLoadedMsg struct {
	playlists []library.PlaylistItem
	err       error
}

type tracksLoadedMsg struct {
	title  string
	tracks []library.PlaylistItem
	err    error
}

type devicesLoadedMsg struct {
	devices []spotify.Device
	err     error
}

type recommendationLoadedMsg struct {
	rec *library.Recommendation
	err error
}

// actionDoneMsg reports the outcome of a mutation (remove, like, follow).
type actionDoneMsg struct {
	err error
}
