// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Track represents a Spotify track.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// SavedTrack represents a track saved in the user's library ("liked songs").
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// Owner identifies the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// TracksPage is the track collection embedded in a full playlist object.
type TracksPage struct {
	Total int             `json:"total"`
	Items []PlaylistTrack `json:"items"`
}

// Playlist represents a full Spotify playlist object, including its track page.
type Playlist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       Owner      `json:"owner"`
	Public      bool       `json:"public"`
	Tracks      TracksPage `json:"tracks"`
	Images      []Image    `json:"images"`
	URI         string     `json:"uri"`
}

// TrackTotal returns the declared track count of the playlist.
func (p Playlist) TrackTotal() int { return p.Tracks.Total }

// TrackItems returns the embedded track page of the playlist.
func (p Playlist) TrackItems() []PlaylistTrack { return p.Tracks.Items }

// TrackCount is the count-only track summary embedded in a simplified
// playlist object.
type TrackCount struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists).
type SimplePlaylist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Owner       Owner      `json:"owner"`
	Public      bool       `json:"public"`
	Tracks      TrackCount `json:"tracks"`
	Images      []Image    `json:"images"`
	URI         string     `json:"uri"`
}

// TrackTotal returns the declared track count of the playlist.
func (p SimplePlaylist) TrackTotal() int { return p.Tracks.Total }

// PaginatedPlaylists represents a paginated response of playlists.
type PaginatedPlaylists struct {
	Items    []SimplePlaylist `json:"items"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

// PaginatedSavedTracks represents a paginated response of saved tracks.
type PaginatedSavedTracks struct {
	Items    []SavedTrack `json:"items"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
}

// PaginatedPlaylistTracks represents a paginated response of playlist tracks.
type PaginatedPlaylistTracks struct {
	Items    []PlaylistTrack `json:"items"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
}

// Device represents a playback device registered with the user's account.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent int    `json:"volume_percent"`
}

// PlayerContext is the remote-reported playback snapshot from /me/player.
type PlayerContext struct {
	Device       *Device `json:"device"`
	RepeatState  string  `json:"repeat_state"` // off, track, context
	ShuffleState bool    `json:"shuffle_state"`
	IsPlaying    bool    `json:"is_playing"`
	ProgressMS   int     `json:"progress_ms"`
	Item         *Track  `json:"item"`
}

// RecommendationSeed describes one seed the recommendation engine used.
type RecommendationSeed struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	HREF   string `json:"href"`
	Pool   int    `json:"initialPoolSize"`
	Picked int    `json:"afterFilteringSize"`
}

// RecommendationsResponse is the /recommendations payload.
type RecommendationsResponse struct {
	Seeds  []RecommendationSeed `json:"seeds"`
	Tracks []Track              `json:"tracks"`
}

// RecommendationQuery carries the seed and tuning parameters for a
// recommendations request. Track and genre seeding are mutually exclusive;
// the caller enforces that before issuing the request.
type RecommendationQuery struct {
	TrackIDs         []string
	SeedGenres       []string
	SeedArtists      []string
	Limit            int
	Offset           int
	Market           string
	MinPopularity    int
	TargetPopularity int
	// Features maps raw audio-feature parameters (min_valence, target_energy, ...)
	// onto their values; keys are passed through to the API untouched.
	Features map[string]float64
}

// User represents the authenticated user's profile.
type User struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Email       string  `json:"email"`
	Country     string  `json:"country"`
	Product     string  `json:"product"` // premium, free, etc.
	Images      []Image `json:"images"`
}

type apiErrorBody struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}
