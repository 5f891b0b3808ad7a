package library

import (
	"testing"

	"github.com/quietriver/cadence/internal/spotify"
)

func TestStore(t *testing.T) {
	t.Run("Never Fetched Versus Cached Empty", func(t *testing.T) {
		s := NewStore()

		if _, ok := s.Playlists(); ok {
			t.Error("expected fresh store to report no playlists cached")
		}

		s.SetPlaylists([]PlaylistItem{})
		if cached, ok := s.Playlists(); !ok || len(cached) != 0 {
			t.Errorf("expected cached empty collection, got ok=%v len=%d", ok, len(cached))
		}
	})

	t.Run("Keyed Track Cache", func(t *testing.T) {
		s := NewStore()

		if _, ok := s.PlaylistTracks("p1"); ok {
			t.Error("expected miss for unknown key")
		}

		s.SetPlaylistTracks("p1", []PlaylistItem{{ID: "t1"}})
		if cached, ok := s.PlaylistTracks("p1"); !ok || len(cached) != 1 {
			t.Errorf("expected hit for p1, got ok=%v len=%d", ok, len(cached))
		}
		if _, ok := s.PlaylistTracks("p2"); ok {
			t.Error("expected p2 to stay a miss")
		}

		s.InvalidatePlaylistTracks("p1")
		if _, ok := s.PlaylistTracks("p1"); ok {
			t.Error("expected miss after invalidation")
		}
	})

	t.Run("Snapshot Does Not Alias The Map", func(t *testing.T) {
		s := NewStore()
		s.SetPlaylistTracks("p1", []PlaylistItem{{ID: "t1"}})

		snapshot := s.PlaylistTracksSnapshot()
		delete(snapshot, "p1")

		if _, ok := s.PlaylistTracks("p1"); !ok {
			t.Error("expected store unaffected by snapshot mutation")
		}
	})

	t.Run("Select Track Records Owning Playlist", func(t *testing.T) {
		s := NewStore()
		s.SelectTrack(PlaylistItem{ID: "t1", PlaylistID: "p1"})

		if selected := s.SelectedTrack(); selected == nil || selected.ID != "t1" {
			t.Fatalf("expected t1 selected, got %+v", selected)
		}
		if s.SelectedPlaylistID() != "p1" {
			t.Errorf("expected playlist selection to follow track, got %q", s.SelectedPlaylistID())
		}
	})

	t.Run("Tab And Player Selection", func(t *testing.T) {
		s := NewStore()

		if s.SelectedTab() != ViewPlaylists {
			t.Errorf("expected playlists as the default tab, got %q", s.SelectedTab())
		}

		s.SelectTab(ViewDevices)
		s.SelectPlayer("device-1")

		if s.SelectedTab() != ViewDevices {
			t.Errorf("expected devices tab, got %q", s.SelectedTab())
		}
		if s.SelectedPlayer() != "device-1" {
			t.Errorf("expected device-1 selected, got %q", s.SelectedPlayer())
		}
	})

	t.Run("SetSort Reorders Cached Playlists", func(t *testing.T) {
		s := NewStore()
		s.SetPlaylists([]PlaylistItem{
			{ID: "p1", Name: "Beta", Index: 0},
			{ID: "p2", Name: "alpha", Index: 1},
		})

		s.SetSort(true)
		sorted, _ := s.Playlists()
		if sorted[0].ID != "p2" {
			t.Errorf("expected alpha first, got %s", sorted[0].Name)
		}
		if !s.SortAlphabetically() {
			t.Error("expected sort mode recorded")
		}

		s.SetSort(false)
		restored, _ := s.Playlists()
		if restored[0].ID != "p1" {
			t.Errorf("expected fetch order restored, got %s", restored[0].Name)
		}
	})

	t.Run("ClearAll Forgets Everything", func(t *testing.T) {
		s := NewStore()
		s.SetPlaylists([]PlaylistItem{{ID: "p1"}})
		s.SetLikedTracks([]PlaylistItem{{ID: "t1"}})
		s.SetPlaylistTracks("p1", []PlaylistItem{{ID: "t1"}})
		s.SetDevices([]spotify.Device{{ID: "d1"}})
		s.SetRecommendation(&Recommendation{Label: "Familiar"})
		s.SelectTrack(PlaylistItem{ID: "t1", PlaylistID: "p1"})

		s.ClearAll()

		if _, ok := s.Playlists(); ok {
			t.Error("expected playlists forgotten")
		}
		if _, ok := s.LikedTracks(); ok {
			t.Error("expected liked tracks forgotten")
		}
		if _, ok := s.PlaylistTracks("p1"); ok {
			t.Error("expected keyed tracks forgotten")
		}
		if len(s.Devices()) != 0 {
			t.Error("expected devices forgotten")
		}
		if s.Recommendation() != nil {
			t.Error("expected recommendation forgotten")
		}
		if s.SelectedPlaylistID() != "" || s.SelectedTrack() != nil {
			t.Error("expected selection cleared")
		}
	})
}

func TestSortPlaylists(t *testing.T) {
	playlists := []PlaylistItem{
		{Name: "banana", Index: 0},
		{Name: "Apple", Index: 1},
		{Name: "cherry", Index: 2},
	}

	SortPlaylists(playlists, true)
	if playlists[0].Name != "Apple" || playlists[1].Name != "banana" {
		t.Errorf("expected case-insensitive order, got %s,%s", playlists[0].Name, playlists[1].Name)
	}

	SortPlaylists(playlists, false)
	if playlists[0].Index != 0 || playlists[2].Index != 2 {
		t.Error("expected index sort to restore fetch order")
	}
}

func TestNewTrackItem(t *testing.T) {
	t.Run("Full Tooltip", func(t *testing.T) {
		item := NewTrackItem(testTrack("t1", "Song", "Artist", "Album", 42), 3)

		if item.Tooltip != "Song - Artist (Popularity: 42)" {
			t.Errorf("unexpected tooltip %q", item.Tooltip)
		}
		if item.Position != 3 {
			t.Errorf("expected position 3, got %d", item.Position)
		}
		if item.Type != ItemTypeTrack || item.ItemType != ItemTypeTrack {
			t.Error("expected track discriminators")
		}
	})

	t.Run("No Artists", func(t *testing.T) {
		track := spotify.Track{ID: "t1", Name: "Solo"}
		item := NewTrackItem(track, 1)

		if item.Artist != "" {
			t.Errorf("expected empty artist, got %q", item.Artist)
		}
		if item.Tooltip != "Solo" {
			t.Errorf("expected bare tooltip, got %q", item.Tooltip)
		}
	})
}

func TestLikedSongsPlaylist(t *testing.T) {
	entry := LikedSongsPlaylist()

	if entry.ID != LikedSongsPlaylistID {
		t.Errorf("unexpected id %q", entry.ID)
	}
	if entry.TrackTotal != 1 {
		t.Errorf("expected sentinel track total 1, got %d", entry.TrackTotal)
	}
	if entry.Tag != "spotify-liked-songs" {
		t.Errorf("unexpected tag %q", entry.Tag)
	}
}
