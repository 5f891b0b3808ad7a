package library

import (
	"fmt"
	"sort"
	"strings"

	"github.com/quietriver/cadence/internal/spotify"
)

const (
	// LikedSongsPlaylistID identifies the synthetic liked-songs playlist.
	// It is never sent to the remote service.
	LikedSongsPlaylistID   = "liked-songs"
	LikedSongsPlaylistName = "Liked Songs"

	// Top40PlaylistID is the curated chart playlist fetched by fixed id.
	Top40PlaylistID = "3rMVEqzAQ1rSJNvLtRZ9J6"
)

// Item type discriminators.
const (
	ItemTypePlaylist = "playlist"
	ItemTypeTrack    = "track"
)

// PlaylistItem is the normalized cache entry for both playlists and tracks.
//
// For tracks, Position is the 1-based rank within the parent playlist at
// fetch time only; it is not a persistent ordinal across refetches.
// PlaylistID is a back-reference to the owning playlist, not ownership.
type PlaylistItem struct {
	ID         string
	Name       string
	Type       string // playlist | track
	ItemType   string
	URI        string
	Tooltip    string
	Position   int
	Index      int // fetch-order rank, drives the "original order" sort mode
	Popularity int
	Artist     string
	AlbumID    string
	AlbumName  string
	PlaylistID string
	Liked      bool
	TrackTotal int
	Tag        string
}

// NewTrackItem builds a PlaylistItem from a raw track and its 1-based
// position. Pure: the input track is never mutated.
func NewTrackItem(track spotify.Track, position int) PlaylistItem {
	artist := artistName(track)

	tooltip := track.Name
	if artist != "" {
		tooltip += fmt.Sprintf(" - %s", artist)
	}
	if track.Popularity > 0 {
		tooltip += fmt.Sprintf(" (Popularity: %d)", track.Popularity)
	}

	return PlaylistItem{
		ID:         track.ID,
		Name:       track.Name,
		Type:       ItemTypeTrack,
		ItemType:   ItemTypeTrack,
		URI:        track.URI,
		Tooltip:    tooltip,
		Position:   position,
		Popularity: track.Popularity,
		Artist:     artist,
		AlbumID:    track.Album.ID,
		AlbumName:  track.Album.Name,
	}
}

// NewPlaylistEntry builds a PlaylistItem for a fetched playlist, recording
// its 0-based fetch order in Index.
func NewPlaylistEntry(p spotify.SimplePlaylist, index int) PlaylistItem {
	return PlaylistItem{
		ID:         p.ID,
		Name:       p.Name,
		Type:       ItemTypePlaylist,
		ItemType:   ItemTypePlaylist,
		URI:        p.URI,
		Index:      index,
		TrackTotal: p.TrackTotal(),
	}
}

// LikedSongsPlaylist synthesizes the liked-songs pseudo-playlist. The track
// total is a sentinel 1 so the entry always renders as non-empty.
func LikedSongsPlaylist() PlaylistItem {
	return PlaylistItem{
		ID:         LikedSongsPlaylistID,
		Name:       LikedSongsPlaylistName,
		Type:       ItemTypePlaylist,
		ItemType:   ItemTypePlaylist,
		Tag:        "spotify-liked-songs",
		TrackTotal: 1,
	}
}

// artistName resolves a display artist from a track's artist list.
func artistName(track spotify.Track) string {
	if len(track.Artists) == 0 {
		return ""
	}
	return track.Artists[0].Name
}

// SortPlaylists orders playlists in place: lower-cased names ascending when
// alphabetical, otherwise by the fetch-order index. Sorting by index after an
// alphabetical sort restores the original fetch order.
func SortPlaylists(playlists []PlaylistItem, alphabetically bool) {
	sort.SliceStable(playlists, func(i, j int) bool {
		if alphabetically {
			return strings.ToLower(playlists[i].Name) < strings.ToLower(playlists[j].Name)
		}
		return playlists[i].Index < playlists[j].Index
	})
}
