package library

import (
	"context"
	"fmt"

	"github.com/quietriver/cadence/internal/spotify"
)

// RecommendationLimit caps the size of a generated recommendation set.
const RecommendationLimit = 20

// seedTrackLimit is the most track seeds the remote accepts per request.
const seedTrackLimit = 5

// Request describes one recommendation run. Genre seeds and track seeds are
// mutually exclusive: a non-empty SeedGenres forces SeedLimit to zero, and a
// zero SeedLimit with no genres is raised to the maximum.
type Request struct {
	Label      string
	SeedLimit  int
	SeedGenres []string
	SeedTracks []string
	Features   map[string]float64
	Offset     int
}

// Recommender builds recommendation sets from cached listening data and the
// remote recommendation endpoint.
type Recommender struct {
	manager *Manager
}

// NewRecommender creates a Recommender bound to a manager.
func NewRecommender(m *Manager) *Recommender {
	return &Recommender{manager: m}
}

// Presets returns the built-in recommendation presets in display order.
func (r *Recommender) Presets() []Request {
	return []Request{
		{Label: "Familiar", SeedLimit: seedTrackLimit},
		{Label: "Happy", SeedLimit: seedTrackLimit, Features: map[string]float64{"min_valence": 0.7, "target_valence": 1}},
		{Label: "Energetic", SeedLimit: seedTrackLimit, Features: map[string]float64{"min_energy": 0.7, "target_energy": 1}},
		{Label: "Danceable", SeedLimit: seedTrackLimit, Features: map[string]float64{"min_danceability": 0.5, "target_danceability": 1}},
		{Label: "Instrumental", SeedLimit: seedTrackLimit, Features: map[string]float64{"min_instrumentalness": 0.6, "target_instrumentalness": 1}},
		{Label: "Quiet music", SeedLimit: seedTrackLimit, Features: map[string]float64{"max_loudness": -10, "target_loudness": -50}},
		{Label: "Audio mix", SeedLimit: seedTrackLimit},
	}
}

// Preset resolves a preset by label, case-sensitively.
func (r *Recommender) Preset(label string) (Request, bool) {
	for _, p := range r.Presets() {
		if p.Label == label {
			return p, true
		}
	}
	return Request{}, false
}

// ForTrack builds a request seeded by one specific track plus cached
// listening history filling the remaining seed slots.
func (r *Recommender) ForTrack(track PlaylistItem) Request {
	return Request{
		Label:      fmt.Sprintf("More like %s", track.Name),
		SeedLimit:  seedTrackLimit - 1,
		SeedTracks: []string{track.ID},
	}
}

// Recommend resolves seeds for the request, queries the remote, normalizes
// the result, and caches it alongside the metadata needed to regenerate the
// set. The recommendations view is told to redraw on success.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Recommendation, error) {
	// SeedLimit counts the history seeds drawn from cached listening data.
	// Explicit track seeds ride on top of that count.
	seedLimit := req.SeedLimit
	if len(req.SeedGenres) > 0 {
		seedLimit = 0
	} else if len(req.SeedTracks) == 0 && seedLimit < seedTrackLimit {
		seedLimit = seedTrackLimit
	}

	seeds := append([]string{}, req.SeedTracks...)
	if seedLimit > 0 {
		fill, err := r.seedTrackIDs(ctx, seedLimit, req.Offset)
		if err != nil {
			return nil, err
		}
		seeds = append(seeds, fill...)
	}

	if len(seeds) == 0 && len(req.SeedGenres) == 0 {
		return nil, fmt.Errorf("no seed material available for %q", req.Label)
	}

	query := spotify.RecommendationQuery{
		TrackIDs:         seeds,
		SeedGenres:       req.SeedGenres,
		Limit:            RecommendationLimit,
		Market:           "",
		MinPopularity:    20,
		TargetPopularity: 100,
		Features:         req.Features,
	}

	fetched, err := r.manager.remote.Recommendations(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}

	tracks := make([]PlaylistItem, 0, len(fetched))
	for i, t := range fetched {
		tracks = append(tracks, NewTrackItem(t, i+1))
	}

	rec := &Recommendation{
		Label:  req.Label,
		Tracks: tracks,
		Meta: RecommendationMeta{
			Label:      req.Label,
			SeedLimit:  req.SeedLimit,
			SeedGenres: req.SeedGenres,
			Features:   req.Features,
			Offset:     req.Offset,
		},
	}
	r.manager.store.SetRecommendation(rec)
	r.manager.notifier.Refresh(ViewRecommendations)
	return rec, nil
}

// Regenerate replays the cached recommendation's request at the next offset,
// producing a fresh set with the same character.
func (r *Recommender) Regenerate(ctx context.Context) (*Recommendation, error) {
	current := r.manager.store.Recommendation()
	if current == nil {
		return nil, fmt.Errorf("no recommendation set to regenerate")
	}
	meta := current.Meta
	return r.Recommend(ctx, Request{
		Label:      meta.Label,
		SeedLimit:  meta.SeedLimit,
		SeedGenres: meta.SeedGenres,
		Features:   meta.Features,
		Offset:     meta.Offset + seedTrackLimit,
	})
}

// Remove drops one track from the cached recommendation set. This is a
// purely local splice, never a remote call. A refresh is emitted only when
// fewer than two tracks remain, signaling the caller that the set is nearly
// exhausted and should be regenerated.
func (r *Recommender) Remove(trackID string) {
	current := r.manager.store.Recommendation()
	if current == nil {
		return
	}

	kept := make([]PlaylistItem, 0, len(current.Tracks))
	for _, t := range current.Tracks {
		if t.ID != trackID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(current.Tracks) {
		return
	}

	r.manager.store.SetRecommendation(&Recommendation{Label: current.Label, Tracks: kept, Meta: current.Meta})
	if len(kept) < 2 {
		r.manager.notifier.Refresh(ViewRecommendations)
	}
}

// AlbumTracksFor fetches the album tracklist behind a cached track, used to
// pivot from a recommendation into its source album.
func (r *Recommender) AlbumTracksFor(ctx context.Context, item PlaylistItem) ([]PlaylistItem, error) {
	if item.AlbumID == "" {
		return nil, fmt.Errorf("track %s has no album reference", item.Name)
	}

	fetched, err := r.manager.remote.AlbumTracks(ctx, item.AlbumID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch album tracks: %w", err)
	}

	tracks := make([]PlaylistItem, 0, len(fetched))
	for i, t := range fetched {
		entry := NewTrackItem(t, i+1)
		entry.AlbumID = item.AlbumID
		entry.AlbumName = item.AlbumName
		tracks = append(tracks, entry)
	}
	return tracks, nil
}

// ShowAlbum replaces the recommendation state with an album's tracklist so
// the recommendations pane can pivot into the source album.
func (r *Recommender) ShowAlbum(ctx context.Context, item PlaylistItem) (*Recommendation, error) {
	tracks, err := r.AlbumTracksFor(ctx, item)
	if err != nil {
		return nil, err
	}

	label := item.AlbumName
	if label == "" {
		label = "Album"
	}
	rec := &Recommendation{
		Label:  label,
		Tracks: tracks,
		Meta:   RecommendationMeta{Label: label},
	}
	r.manager.store.SetRecommendation(rec)
	r.manager.notifier.Refresh(ViewRecommendations)
	return rec, nil
}

// seedTrackIDs assembles seed track ids from cached listening data: liked
// songs first (fetched if absent), then already-cached playlist tracks. The
// playlist caches are read through a snapshot and never mutated. Offset
// skips past the start of the liked sequence so successive runs draw
// different seeds.
func (r *Recommender) seedTrackIDs(ctx context.Context, count, offset int) ([]string, error) {
	liked, err := r.manager.LikedSongs(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, count)
	for i := offset; i < len(liked) && len(ids) < count; i++ {
		ids = append(ids, liked[i].ID)
	}
	if len(ids) == count {
		return ids, nil
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	for playlistID, tracks := range r.manager.store.PlaylistTracksSnapshot() {
		if playlistID == LikedSongsPlaylistID {
			continue
		}
		for _, t := range tracks {
			if len(ids) == count {
				return ids, nil
			}
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
			ids = append(ids, t.ID)
		}
	}
	return ids, nil
}
