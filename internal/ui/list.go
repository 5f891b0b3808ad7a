package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/quietriver/cadence/internal/library"
	"github.com/quietriver/cadence/internal/spotify"
)

var (
	_ list.Item = playlistEntry{}
	_ list.Item = trackEntry{}
	_ list.Item = deviceEntry{}
)

// playlistEntry wraps a playlist [library.PlaylistItem] to implement [list.Item].
type playlistEntry struct {
	item library.PlaylistItem
}

func (e playlistEntry) FilterValue() string { return e.item.Name }
func (e playlistEntry) Title() string       { return e.item.Name }
func (e playlistEntry) Description() string {
	if e.item.ID == library.LikedSongsPlaylistID {
		return "your saved tracks"
	}
	return fmt.Sprintf("%d tracks", e.item.TrackTotal)
}

// trackEntry wraps a track [library.PlaylistItem] to implement [list.Item].
type trackEntry struct {
	item library.PlaylistItem
}

func (e trackEntry) FilterValue() string { return e.item.Name }
func (e trackEntry) Title() string       { return e.item.Name }
func (e trackEntry) Description() string {
	desc := e.item.Artist
	if e.item.AlbumName != "" {
		desc = fmt.Sprintf("%s • %s", desc, e.item.AlbumName)
	}
	if e.item.Liked {
		desc = fmt.Sprintf("%s • liked", desc)
	}
	return desc
}

// deviceEntry wraps a [spotify.Device] to implement [list.Item].
type deviceEntry struct {
	device spotify.Device
}

func (e deviceEntry) FilterValue() string { return e.device.Name }
func (e deviceEntry) Title() string       { return e.device.Name }
func (e deviceEntry) Description() string {
	desc := e.device.Type
	if e.device.IsActive {
		desc = fmt.Sprintf("%s • active", desc)
	}
	return desc
}
