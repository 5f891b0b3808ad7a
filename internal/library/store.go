package library

import (
	"sync"

	"github.com/quietriver/cadence/internal/spotify"
)

// Recommendation holds the current recommendation set together with the seed
// metadata that produced it, so the UI can show why tracks were recommended
// and repeated requests with the same seeds stay idempotent.
type Recommendation struct {
	Label  string
	Tracks []PlaylistItem
	Meta   RecommendationMeta
}

// RecommendationMeta records the request parameters behind a recommendation.
type RecommendationMeta struct {
	Label      string
	SeedLimit  int
	SeedGenres []string
	Features   map[string]float64
	Offset     int
}

// Store is the process-wide cache of remote state plus UI selection.
//
// All setters replace the referenced value wholesale; the per-playlist track
// cache is keyed and only the targeted key is replaced. A nil playlists or
// liked slice means "never fetched", which is distinct from an empty fetch
// result. The mutex makes the replace-don't-edit discipline safe for the
// timer goroutines the poller schedules.
type Store struct {
	mu sync.RWMutex

	playlists      []PlaylistItem
	likedTracks    []PlaylistItem
	playlistTracks map[string][]PlaylistItem
	top40          *PlaylistItem
	devices        []spotify.Device
	playerContext  *spotify.PlayerContext
	nowPlaying     *PlaylistItem
	recommendation *Recommendation

	selectedPlaylistID string
	selectedTrack      *PlaylistItem
	selectedTab        string
	selectedPlayer     string
	sortAlphabetically bool
}

// NewStore creates an empty store. The default tab is the playlists view.
func NewStore() *Store {
	return &Store{
		playlistTracks: make(map[string][]PlaylistItem),
		selectedTab:    ViewPlaylists,
	}
}

// Playlists returns the cached playlist collection; ok is false when it has
// never been fetched.
func (s *Store) Playlists() ([]PlaylistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playlists, s.playlists != nil
}

// SetPlaylists replaces the playlist collection wholesale.
func (s *Store) SetPlaylists(playlists []PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = playlists
}

// LikedTracks returns the cached liked songs; ok is false when never fetched.
func (s *Store) LikedTracks() ([]PlaylistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.likedTracks, s.likedTracks != nil
}

// SetLikedTracks replaces the liked-songs cache wholesale.
func (s *Store) SetLikedTracks(tracks []PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likedTracks = tracks
}

// ClearLikedTracks forgets the liked-songs cache so the next read refetches.
func (s *Store) ClearLikedTracks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likedTracks = nil
}

// PlaylistTracks returns the cached tracks for one playlist; ok is false when
// that playlist has never been fetched.
func (s *Store) PlaylistTracks(playlistID string) ([]PlaylistItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tracks, ok := s.playlistTracks[playlistID]
	return tracks, ok
}

// SetPlaylistTracks replaces the track cache for a single playlist key.
func (s *Store) SetPlaylistTracks(playlistID string, tracks []PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlistTracks[playlistID] = tracks
}

// InvalidatePlaylistTracks drops one playlist's track cache entry.
func (s *Store) InvalidatePlaylistTracks(playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.playlistTracks, playlistID)
}

// PlaylistTracksSnapshot copies the keyed track cache for read-only scans.
// The inner slices are shared; callers must not mutate them.
func (s *Store) PlaylistTracksSnapshot() map[string][]PlaylistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string][]PlaylistItem, len(s.playlistTracks))
	for id, tracks := range s.playlistTracks {
		snapshot[id] = tracks
	}
	return snapshot
}

// Top40 returns the cached chart playlist, nil until fetched.
func (s *Store) Top40() *PlaylistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.top40
}

// SetTop40 replaces the cached chart playlist.
func (s *Store) SetTop40(item *PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.top40 = item
}

// Devices returns the cached device list. Never-fetched and empty are not
// distinguished; the poller's diff logic handles both.
func (s *Store) Devices() []spotify.Device {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.devices
}

// SetDevices replaces the device set wholesale, never merged field-by-field.
func (s *Store) SetDevices(devices []spotify.Device) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = devices
}

// PlayerContext returns the cached playback snapshot, nil until populated.
func (s *Store) PlayerContext() *spotify.PlayerContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.playerContext
}

// SetPlayerContext replaces the cached playback snapshot wholesale.
func (s *Store) SetPlayerContext(pc *spotify.PlayerContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerContext = pc
}

// ClearPlayerContext marks the playback snapshot stale.
func (s *Store) ClearPlayerContext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playerContext = nil
}

// NowPlaying returns the cached running track, nil when unknown.
func (s *Store) NowPlaying() *PlaylistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowPlaying
}

// SetNowPlaying replaces the cached running track.
func (s *Store) SetNowPlaying(item *PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowPlaying = item
}

// Recommendation returns the current recommendation state, nil when none.
func (s *Store) Recommendation() *Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recommendation
}

// SetRecommendation replaces the recommendation state wholesale.
func (s *Store) SetRecommendation(rec *Recommendation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recommendation = rec
}

// SelectedPlaylistID returns the selected playlist id, empty when none.
func (s *Store) SelectedPlaylistID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedPlaylistID
}

// SelectPlaylist records the user's playlist selection.
func (s *Store) SelectPlaylist(playlistID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedPlaylistID = playlistID
}

// SelectedTrack returns the selected track item, nil when none.
func (s *Store) SelectedTrack() *PlaylistItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTrack
}

// SelectTrack records the selected track and follows its back-reference to
// also select the owning playlist.
func (s *Store) SelectTrack(item PlaylistItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTrack = &item
	s.selectedPlaylistID = item.PlaylistID
}

// SelectedTab returns the active tab view name.
func (s *Store) SelectedTab() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedTab
}

// SelectTab records the active tab view.
func (s *Store) SelectTab(tab string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedTab = tab
}

// SelectedPlayer returns the chosen player name.
func (s *Store) SelectedPlayer() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedPlayer
}

// SelectPlayer records the chosen player name.
func (s *Store) SelectPlayer(player string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedPlayer = player
}

// SortAlphabetically reports the current sort mode.
func (s *Store) SortAlphabetically() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortAlphabetically
}

// SetSort updates the sort mode and re-sorts the live cached playlist slice
// under the same lock, so no reader can observe the mode and the order out of
// sync.
func (s *Store) SetSort(alphabetically bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortAlphabetically = alphabetically
	if len(s.playlists) > 0 {
		SortPlaylists(s.playlists, alphabetically)
	}
}

// ClearAll forgets all remote data and the selection in one atomic step, so
// the selection can never point at now-absent data. Used on sign-out and
// account switch.
func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = nil
	s.likedTracks = nil
	s.playlistTracks = make(map[string][]PlaylistItem)
	s.top40 = nil
	s.devices = nil
	s.playerContext = nil
	s.nowPlaying = nil
	s.recommendation = nil
	s.selectedPlaylistID = ""
	s.selectedTrack = nil
}
