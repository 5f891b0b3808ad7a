// Spotify Web API client used as the remote side of the cache layer.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/quietriver/cadence/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	pageLimit = 50
)

// Client talks to the Spotify Web API on behalf of one authorized user.
//
// Uses [oauth2] for authentication and token refresh, and a [rate.Limiter]
// so polling flows cannot exceed the configured request budget client-side.
type Client struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
	baseURL    string
	userID     string
}

// NewClient creates a client with the given OAuth2 credentials.
func NewClient(credentials map[string]string, logger *log.Logger) (*Client, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"user-read-private",
			"user-read-playback-state",
			"user-modify-playback-state",
			"user-read-currently-playing",
			"playlist-read-private",
			"playlist-read-collaborative",
			"playlist-modify-public",
			"playlist-modify-private",
			"user-library-read",
			"user-library-modify",
			"user-follow-modify",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	c := &Client{
		config:     config,
		httpClient: http.DefaultClient,
		limiter:    rate.NewLimiter(rate.Limit(5), 1),
		logger:     logger,
		baseURL:    spotifyBaseURL,
	}

	if at := credentials["access_token"]; at != "" {
		c.token = &oauth2.Token{AccessToken: at, RefreshToken: credentials["refresh_token"]}
	}

	return c, nil
}

// SetRateLimit adjusts the client-side request budget in requests per second.
func (c *Client) SetRateLimit(rps float64) {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// SetBaseURL overrides the API base URL. Used by tests against httptest servers.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// SetToken installs a token and an auto-refreshing HTTP client for it.
func (c *Client) SetToken(token *oauth2.Token) {
	c.token = token
	if token.RefreshToken != "" {
		c.httpClient = c.config.Client(context.Background(), token)
	}
}

// Token returns the current token, or nil when unauthorized.
func (c *Client) Token() *oauth2.Token { return c.token }

// Authorized reports whether remote access is currently configured.
// Consulted by the cache layer before any playlist fetch.
func (c *Client) Authorized() bool {
	return c.token != nil && c.token.AccessToken != ""
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (c *Client) AuthURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying [oauth2.Config] for the callback server.
func (c *Client) OAuthConfig() *oauth2.Config { return c.config }

func (c *Client) Name() string { return "Spotify" }

// doRequest performs an authenticated request and maps HTTP failures onto the
// shared error taxonomy: 429 → ErrRateLimited, 401/403 → ErrNotAuthorized,
// any other non-2xx → ErrRemoteFailure carrying the API's message.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if !c.Authorized() {
		return fmt.Errorf("%w: no access token installed", shared.ErrNotAuthorized)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: retry-after %s", shared.ErrRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", shared.ErrNotAuthorized, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		var apiErr apiErrorBody
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("%w: %s (status %d)", shared.ErrRemoteFailure, apiErr.Error.Message, resp.StatusCode)
		}
		return fmt.Errorf("%w: status %d", shared.ErrRemoteFailure, resp.StatusCode)
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	return nil
}

// User retrieves the authenticated user's profile.
func (c *Client) User(ctx context.Context) (*User, error) {
	var user User
	if err := c.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Playlists retrieves all playlists for the authenticated user, walking
// pagination until exhausted. Order is the remote's order.
func (c *Client) Playlists(ctx context.Context) ([]SimplePlaylist, error) {
	var all []SimplePlaylist
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", pageLimit, offset)
		var page PaginatedPlaylists
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageLimit
	}

	return all, nil
}

// Playlist retrieves a playlist by ID, including its first track page.
func (c *Client) Playlist(ctx context.Context, playlistID string) (*Playlist, error) {
	var playlist Playlist
	if err := c.doRequest(ctx, http.MethodGet, "/playlists/"+playlistID, nil, &playlist); err != nil {
		return nil, err
	}
	return &playlist, nil
}

// PlaylistTracks retrieves every track of a playlist, walking pagination.
func (c *Client) PlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	var all []PlaylistTrack
	offset := 0

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", playlistID, pageLimit, offset)
		var page PaginatedPlaylistTracks
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageLimit
	}

	return all, nil
}

// LikedSongs retrieves the user's saved tracks, walking pagination.
func (c *Client) LikedSongs(ctx context.Context) ([]SavedTrack, error) {
	var all []SavedTrack
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", pageLimit, offset)
		var page PaginatedSavedTracks
		if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Items...)
		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += pageLimit
	}

	return all, nil
}

// Devices returns the playback devices currently registered with the account.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var response struct {
		Devices []Device `json:"devices"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &response); err != nil {
		return nil, err
	}
	return response.Devices, nil
}

// PlayerContext returns the current playback snapshot, or nil when the remote
// reports no active player (204).
func (c *Client) PlayerContext(ctx context.Context) (*PlayerContext, error) {
	var pc PlayerContext
	if err := c.doRequest(ctx, http.MethodGet, "/me/player", nil, &pc); err != nil {
		return nil, err
	}
	if pc.Device == nil && pc.Item == nil && pc.RepeatState == "" {
		return nil, nil
	}
	return &pc, nil
}

// AlbumTracks retrieves the tracks of an album.
func (c *Client) AlbumTracks(ctx context.Context, albumID string) ([]Track, error) {
	var page struct {
		Items []Track `json:"items"`
	}
	endpoint := fmt.Sprintf("/albums/%s/tracks?limit=%d", albumID, pageLimit)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Recommendations requests recommended tracks for the given seeds.
func (c *Client) Recommendations(ctx context.Context, q RecommendationQuery) ([]Track, error) {
	params := url.Values{}

	if len(q.TrackIDs) > 0 {
		params.Set("seed_tracks", strings.Join(q.TrackIDs, ","))
	}
	if len(q.SeedGenres) > 0 {
		params.Set("seed_genres", strings.Join(q.SeedGenres, ","))
	}
	if len(q.SeedArtists) > 0 {
		params.Set("seed_artists", strings.Join(q.SeedArtists, ","))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Market != "" {
		params.Set("market", q.Market)
	}
	if q.MinPopularity > 0 {
		params.Set("min_popularity", strconv.Itoa(q.MinPopularity))
	}
	if q.TargetPopularity > 0 {
		params.Set("target_popularity", strconv.Itoa(q.TargetPopularity))
	}

	// stable ordering keeps request URLs reproducible in tests and logs
	features := make([]string, 0, len(q.Features))
	for k := range q.Features {
		features = append(features, k)
	}
	sort.Strings(features)
	for _, k := range features {
		params.Set(k, strconv.FormatFloat(q.Features[k], 'f', -1, 64))
	}

	var response RecommendationsResponse
	if err := c.doRequest(ctx, http.MethodGet, "/recommendations?"+params.Encode(), nil, &response); err != nil {
		return nil, err
	}
	return response.Tracks, nil
}

// FollowPlaylist adds the playlist to the user's library.
func (c *Client) FollowPlaylist(ctx context.Context, playlistID string) error {
	body := map[string]bool{"public": false}
	return c.doRequest(ctx, http.MethodPut, "/playlists/"+playlistID+"/followers", body, nil)
}

// UnfollowPlaylist removes the playlist from the user's library.
func (c *Client) UnfollowPlaylist(ctx context.Context, playlistID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/playlists/"+playlistID+"/followers", nil, nil)
}

// CreatePlaylist creates an empty playlist owned by the authenticated user.
// A 2xx response missing the playlist id is reported as a malformed response
// rather than surfaced to callers as a half-valid playlist.
func (c *Client) CreatePlaylist(ctx context.Context, name string, public bool) (*Playlist, error) {
	if c.userID == "" {
		user, err := c.User(ctx)
		if err != nil {
			return nil, err
		}
		c.userID = user.ID
	}

	body := map[string]any{"name": name, "public": public}
	var created Playlist
	if err := c.doRequest(ctx, http.MethodPost, "/users/"+c.userID+"/playlists", body, &created); err != nil {
		return nil, err
	}

	if created.ID == "" {
		return nil, fmt.Errorf("%w: created playlist has no id", shared.ErrMalformedResponse)
	}

	return &created, nil
}

// AddTracksToPlaylist appends the given track URIs to a playlist.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	if len(uris) == 0 {
		return fmt.Errorf("%w: no track uris", shared.ErrInvalidArgument)
	}
	body := map[string]any{"uris": uris}
	return c.doRequest(ctx, http.MethodPost, "/playlists/"+playlistID+"/tracks", body, nil)
}

// RemoveTracksFromPlaylist removes all occurrences of the given tracks.
func (c *Client) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return fmt.Errorf("%w: no track ids", shared.ErrInvalidArgument)
	}

	type trackRef struct {
		URI string `json:"uri"`
	}
	refs := make([]trackRef, 0, len(trackIDs))
	for _, id := range trackIDs {
		refs = append(refs, trackRef{URI: "spotify:track:" + id})
	}

	body := map[string]any{"tracks": refs}
	return c.doRequest(ctx, http.MethodDelete, "/playlists/"+playlistID+"/tracks", body, nil)
}

// SetLiked saves or removes a track in the user's liked songs.
func (c *Client) SetLiked(ctx context.Context, trackID string, liked bool) error {
	endpoint := "/me/tracks?ids=" + url.QueryEscape(trackID)
	method := http.MethodDelete
	if liked {
		method = http.MethodPut
	}
	return c.doRequest(ctx, method, endpoint, nil, nil)
}
