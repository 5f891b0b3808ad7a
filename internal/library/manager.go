package library

import (
	"context"
	"fmt"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"
	"github.com/quietriver/cadence/internal/shared"
	"github.com/quietriver/cadence/internal/spotify"
)

// RemoteService is the capability set the reconciliation layer consumes from
// the streaming service. [spotify.Client] implements it; tests substitute a
// fake.
type RemoteService interface {
	// Authorized reports whether remote access is currently configured.
	Authorized() bool

	Playlists(ctx context.Context) ([]spotify.SimplePlaylist, error)
	Playlist(ctx context.Context, playlistID string) (*spotify.Playlist, error)
	PlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error)
	LikedSongs(ctx context.Context) ([]spotify.SavedTrack, error)
	Devices(ctx context.Context) ([]spotify.Device, error)
	PlayerContext(ctx context.Context) (*spotify.PlayerContext, error)
	Recommendations(ctx context.Context, q spotify.RecommendationQuery) ([]spotify.Track, error)
	AlbumTracks(ctx context.Context, albumID string) ([]spotify.Track, error)

	FollowPlaylist(ctx context.Context, playlistID string) error
	UnfollowPlaylist(ctx context.Context, playlistID string) error
	CreatePlaylist(ctx context.Context, name string, public bool) (*spotify.Playlist, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
	RemoveTracksFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
	SetLiked(ctx context.Context, trackID string, liked bool) error
}

// Manager reconciles the cache with the remote service: cache-or-fetch reads,
// normalization, and confirmed-state-only mutation handling.
type Manager struct {
	store    *Store
	remote   RemoteService
	notifier Notifier
	clock    clock.Clock
	logger   *log.Logger
}

// ManagerOpts contains the dependencies injected into a Manager.
type ManagerOpts struct {
	Store    *Store
	Remote   RemoteService
	Notifier Notifier
	Clock    clock.Clock
	Logger   *log.Logger
}

// NewManager creates a Manager. Store, Notifier, Clock, and Logger default to
// a fresh store, a no-op notifier, the wall clock, and a stderr logger.
func NewManager(opts ManagerOpts) *Manager {
	if opts.Store == nil {
		opts.Store = NewStore()
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier
	}
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Manager{
		store:    opts.Store,
		remote:   opts.Remote,
		notifier: opts.Notifier,
		clock:    opts.Clock,
		logger:   opts.Logger,
	}
}

// Store exposes the cache for read paths (CLI output, TUI rendering).
func (m *Manager) Store() *Store { return m.store }

// SetNotifier rewires the refresh signal target. Used by the TUI, which only
// exists after the manager does.
func (m *Manager) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier
	}
	m.notifier = n
}

// Playlists returns the user's playlists, serving the cache unless
// forceRefresh is set. When remote access is not authorized it returns an
// empty collection without touching the cache. Fetched playlists get a
// 0-based Index equal to their fetch order.
func (m *Manager) Playlists(ctx context.Context, forceRefresh bool) ([]PlaylistItem, error) {
	if !m.remote.Authorized() {
		return []PlaylistItem{}, nil
	}

	if !forceRefresh {
		if cached, ok := m.store.Playlists(); ok {
			return cached, nil
		}
	}

	fetched, err := m.remote.Playlists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlists: %w", err)
	}

	playlists := make([]PlaylistItem, 0, len(fetched))
	for i, p := range fetched {
		playlists = append(playlists, NewPlaylistEntry(p, i))
	}

	m.store.SetPlaylists(playlists)
	m.logger.Debug("playlists cached", "count", len(playlists))
	return playlists, nil
}

// LikedSongs returns the liked-songs tracks, fetching only when absent from
// the cache. Every track carries the liked-songs playlist back-reference, a
// liked flag, and a derived album name.
func (m *Manager) LikedSongs(ctx context.Context) ([]PlaylistItem, error) {
	if cached, ok := m.store.LikedTracks(); ok {
		return cached, nil
	}

	fetched, err := m.remote.LikedSongs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked songs: %w", err)
	}

	tracks := make([]PlaylistItem, 0, len(fetched))
	for i, saved := range fetched {
		item := NewTrackItem(saved.Track, i+1)
		item.PlaylistID = LikedSongsPlaylistID
		item.Liked = true
		tracks = append(tracks, item)
	}

	m.store.SetLikedTracks(tracks)
	m.logger.Debug("liked songs cached", "count", len(tracks))
	return tracks, nil
}

// PlaylistTracks returns the tracks of one playlist, fetching only when that
// key is absent from the cache. Tracks get the playlist back-reference, a
// cleared liked flag, and a derived album name.
func (m *Manager) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	if cached, ok := m.store.PlaylistTracks(playlistID); ok {
		return cached, nil
	}

	fetched, err := m.remote.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	tracks := make([]PlaylistItem, 0, len(fetched))
	for i, pt := range fetched {
		item := NewTrackItem(pt.Track, i+1)
		item.PlaylistID = playlistID
		tracks = append(tracks, item)
	}

	m.store.SetPlaylistTracks(playlistID, tracks)
	return tracks, nil
}

// SelectLikedSongs selects the liked-songs pseudo-playlist, populates its
// tracks if needed, and requests a redraw.
func (m *Manager) SelectLikedSongs(ctx context.Context) error {
	m.store.SelectPlaylist(LikedSongsPlaylistID)
	if _, err := m.LikedSongs(ctx); err != nil {
		return err
	}
	m.notifier.Refresh("")
	return nil
}

// SelectPlaylistTracks selects a playlist, populates its tracks if needed,
// and requests a redraw.
func (m *Manager) SelectPlaylistTracks(ctx context.Context, playlistID string) error {
	m.store.SelectPlaylist(playlistID)
	if _, err := m.PlaylistTracks(ctx, playlistID); err != nil {
		return err
	}
	m.notifier.Refresh("")
	return nil
}

// Top40 fetches the curated chart playlist by its fixed id, normalizes its
// embedded tracks, and caches both the entry and the track list.
func (m *Manager) Top40(ctx context.Context) (*PlaylistItem, error) {
	fetched, err := m.remote.Playlist(ctx, Top40PlaylistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top-40 playlist: %w", err)
	}

	entry := PlaylistItem{
		ID:         fetched.ID,
		Name:       fetched.Name,
		Type:       ItemTypePlaylist,
		ItemType:   ItemTypePlaylist,
		URI:        fetched.URI,
		TrackTotal: fetched.TrackTotal(),
	}

	tracks := make([]PlaylistItem, 0, len(fetched.TrackItems()))
	for i, pt := range fetched.TrackItems() {
		item := NewTrackItem(pt.Track, i+1)
		item.PlaylistID = fetched.ID
		tracks = append(tracks, item)
	}

	m.store.SetTop40(&entry)
	m.store.SetPlaylistTracks(fetched.ID, tracks)
	return &entry, nil
}

// PlaylistByID resolves a cached playlist entry, special-casing the chart
// playlist which lives outside the main collection.
func (m *Manager) PlaylistByID(playlistID string) (PlaylistItem, bool) {
	if playlistID == Top40PlaylistID {
		if top40 := m.store.Top40(); top40 != nil {
			return *top40, true
		}
		return PlaylistItem{}, false
	}

	playlists, ok := m.store.Playlists()
	if !ok {
		return PlaylistItem{}, false
	}
	for _, p := range playlists {
		if p.ID == playlistID {
			return p, true
		}
	}
	return PlaylistItem{}, false
}

// IsLikedPlaylistSelected reports whether the liked-songs pseudo-playlist is
// the current selection.
func (m *Manager) IsLikedPlaylistSelected() bool {
	return m.store.SelectedPlaylistID() == LikedSongsPlaylistID
}

// SetSort switches the playlist sort mode, re-sorts the live cached sequence,
// and requests a redraw.
func (m *Manager) SetSort(alphabetically bool) {
	m.store.SetSort(alphabetically)
	m.notifier.Refresh("")
}

// PopulatePlayerContext refreshes the cached playback snapshot and the
// now-playing track derived from it.
func (m *Manager) PopulatePlayerContext(ctx context.Context) error {
	pc, err := m.remote.PlayerContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch player context: %w", err)
	}
	m.store.SetPlayerContext(pc)
	if pc != nil && pc.Item != nil {
		item := NewTrackItem(*pc.Item, 0)
		m.store.SetNowPlaying(&item)
	}
	return nil
}

// IsTrackRepeating reports whether repeat-one is active, populating the
// player context first when it is stale and a track is known to be running.
func (m *Manager) IsTrackRepeating(ctx context.Context) (bool, error) {
	pc := m.store.PlayerContext()
	if pc == nil && m.store.NowPlaying() != nil {
		if err := m.PopulatePlayerContext(ctx); err != nil {
			return false, err
		}
		pc = m.store.PlayerContext()
	}
	if pc == nil {
		return false, nil
	}
	return pc.RepeatState == "track", nil
}

// RemoveTrackFromPlaylist removes a track from its owning playlist. Removal
// from the liked pseudo-playlist routes to the set-liked mutation instead of
// a playlist edit. The cache is only touched after the remote confirms.
func (m *Manager) RemoveTrackFromPlaylist(ctx context.Context, item PlaylistItem) error {
	if item.PlaylistID == "" {
		return fmt.Errorf("%w: track has no playlist reference", shared.ErrInvalidArgument)
	}

	if item.PlaylistID == LikedSongsPlaylistID {
		return m.SetLiked(ctx, item, false)
	}

	if err := m.remote.RemoveTracksFromPlaylist(ctx, item.PlaylistID, []string{item.ID}); err != nil {
		return fmt.Errorf("failed to remove track: %w", err)
	}

	m.store.InvalidatePlaylistTracks(item.PlaylistID)
	if _, err := m.PlaylistTracks(ctx, item.PlaylistID); err != nil {
		m.logger.Warn("refetch after removal failed", "playlist", item.PlaylistID, "error", err)
	}
	m.notifier.Refresh("")
	return nil
}

// SetLiked saves or removes a track from liked songs, then refetches the
// liked cache so it reflects only confirmed remote state.
func (m *Manager) SetLiked(ctx context.Context, item PlaylistItem, liked bool) error {
	if err := m.remote.SetLiked(ctx, item.ID, liked); err != nil {
		return fmt.Errorf("failed to update liked state: %w", err)
	}

	m.store.ClearLikedTracks()
	if _, err := m.LikedSongs(ctx); err != nil {
		m.logger.Warn("refetch after liked update failed", "error", err)
	}
	m.notifier.Refresh("")
	return nil
}

// FollowPlaylist follows a playlist and force-refreshes the playlist
// collection since its membership changed.
func (m *Manager) FollowPlaylist(ctx context.Context, item PlaylistItem) error {
	if err := m.remote.FollowPlaylist(ctx, item.ID); err != nil {
		return fmt.Errorf("unable to follow %s: %w", item.Name, err)
	}

	if _, err := m.Playlists(ctx, true); err != nil {
		m.logger.Warn("playlist refresh after follow failed", "error", err)
	}
	m.notifier.Refresh("")
	return nil
}

// UnfollowPlaylist removes the playlist from the user's library and
// force-refreshes the collection. Any cached track listing for it is dropped.
func (m *Manager) UnfollowPlaylist(ctx context.Context, item PlaylistItem) error {
	if err := m.remote.UnfollowPlaylist(ctx, item.ID); err != nil {
		return fmt.Errorf("unable to unfollow %s: %w", item.Name, err)
	}

	m.store.InvalidatePlaylistTracks(item.ID)
	if _, err := m.Playlists(ctx, true); err != nil {
		m.logger.Warn("playlist refresh after unfollow failed", "error", err)
	}
	m.notifier.Refresh("")
	return nil
}

// CreatePlaylist creates a playlist, optionally seeds it with tracks, and
// force-refreshes the collection. Nothing is cached speculatively; a
// malformed create response surfaces as an error before any cache write.
func (m *Manager) CreatePlaylist(ctx context.Context, name string, public bool, trackURIs []string) (*PlaylistItem, error) {
	created, err := m.remote.CreatePlaylist(ctx, name, public)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	if len(trackURIs) > 0 {
		if err := m.remote.AddTracksToPlaylist(ctx, created.ID, trackURIs); err != nil {
			return nil, fmt.Errorf("playlist created but adding tracks failed: %w", err)
		}
	}

	if _, err := m.Playlists(ctx, true); err != nil {
		m.logger.Warn("playlist refresh after create failed", "error", err)
	}
	m.notifier.Refresh("")

	entry := PlaylistItem{
		ID:       created.ID,
		Name:     created.Name,
		Type:     ItemTypePlaylist,
		ItemType: ItemTypePlaylist,
		URI:      created.URI,
	}
	return &entry, nil
}

// ClearAll forgets all cached remote data and selection, then requests a
// redraw. Used on sign-out and account switch.
func (m *Manager) ClearAll() {
	m.store.ClearAll()
	m.notifier.Refresh("")
}
