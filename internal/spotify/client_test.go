package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/quietriver/cadence/internal/shared"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
		"access_token":  "test_token",
	}, nil)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	client.SetBaseURL(server.URL)
	client.SetRateLimit(1000)
	return client, server
}

func TestNewClient(t *testing.T) {
	t.Run("With Valid Credentials", func(t *testing.T) {
		client, err := NewClient(map[string]string{
			"client_id":     "test_client_id",
			"client_secret": "test_client_secret",
		}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if client.Name() != "Spotify" {
			t.Errorf("expected client name 'Spotify', got %s", client.Name())
		}
		if client.Authorized() {
			t.Error("expected client without token to be unauthorized")
		}
	})

	t.Run("Missing Client ID", func(t *testing.T) {
		_, err := NewClient(map[string]string{"client_secret": "secret"}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Missing Client Secret", func(t *testing.T) {
		_, err := NewClient(map[string]string{"client_id": "id"}, nil)
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Default Redirect URI", func(t *testing.T) {
		client, err := NewClient(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if client.OAuthConfig().RedirectURL != "http://localhost:3000/callback" {
			t.Errorf("unexpected redirect %s", client.OAuthConfig().RedirectURL)
		}
	})

	t.Run("Token From Credentials", func(t *testing.T) {
		client, err := NewClient(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
			"access_token":  "tok",
		}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !client.Authorized() {
			t.Error("expected client with access token to be authorized")
		}
	})
}

func TestClientErrorMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("Unauthorized Client", func(t *testing.T) {
		client, err := NewClient(map[string]string{
			"client_id":     "id",
			"client_secret": "secret",
		}, nil)
		if err != nil {
			t.Fatal(err)
		}

		_, err = client.Playlists(ctx)
		if !errors.Is(err, shared.ErrNotAuthorized) {
			t.Errorf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("Rate Limited", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		}))

		_, err := client.Devices(ctx)
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Errorf("expected ErrRateLimited, got %v", err)
		}
	})

	t.Run("Expired Token", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))

		_, err := client.Devices(ctx)
		if !errors.Is(err, shared.ErrNotAuthorized) {
			t.Errorf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("Remote Failure Carries Message", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			fmt.Fprint(w, `{"error":{"status":502,"message":"upstream broke"}}`)
		}))

		_, err := client.Devices(ctx)
		if !errors.Is(err, shared.ErrRemoteFailure) {
			t.Fatalf("expected ErrRemoteFailure, got %v", err)
		}
		if got := err.Error(); !strings.Contains(got, "upstream broke") {
			t.Errorf("expected API message in error, got %q", got)
		}
	})

	t.Run("Malformed Body", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"devices": [`)
		}))

		_, err := client.Devices(ctx)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestClientPlaylists(t *testing.T) {
	ctx := context.Background()

	t.Run("Walks Pagination", func(t *testing.T) {
		requests := 0
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			offset := r.URL.Query().Get("offset")

			page := PaginatedPlaylists{}
			if offset == "0" {
				next := "more"
				page.Next = &next
				for i := 0; i < 50; i++ {
					page.Items = append(page.Items, SimplePlaylist{ID: fmt.Sprintf("p%d", i)})
				}
			} else {
				page.Items = []SimplePlaylist{{ID: "p50"}}
			}
			json.NewEncoder(w).Encode(page)
		}))

		playlists, err := client.Playlists(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(playlists) != 51 {
			t.Errorf("expected 51 playlists across pages, got %d", len(playlists))
		}
		if requests != 2 {
			t.Errorf("expected 2 page requests, got %d", requests)
		}
	})

	t.Run("Single Page", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(PaginatedPlaylists{
				Items: []SimplePlaylist{{ID: "p1", Name: "Mix"}},
			})
		}))

		playlists, err := client.Playlists(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(playlists) != 1 || playlists[0].Name != "Mix" {
			t.Errorf("unexpected playlists %v", playlists)
		}
	})
}

func TestClientPlayerContext(t *testing.T) {
	ctx := context.Background()

	t.Run("No Active Player", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

		pc, err := client.PlayerContext(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if pc != nil {
			t.Errorf("expected nil context, got %+v", pc)
		}
	})

	t.Run("Active Player", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"repeat_state":"track","is_playing":true,"device":{"id":"d1"}}`)
		}))

		pc, err := client.PlayerContext(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if pc == nil || pc.RepeatState != "track" || !pc.IsPlaying {
			t.Errorf("unexpected context %+v", pc)
		}
	})
}

func TestClientCreatePlaylist(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches User ID Lazily", func(t *testing.T) {
		var userCalls, createPath string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.URL.Path == "/me":
				userCalls = "yes"
				fmt.Fprint(w, `{"id":"alice"}`)
			default:
				createPath = r.URL.Path
				fmt.Fprint(w, `{"id":"new-playlist","name":"Mix"}`)
			}
		}))

		created, err := client.CreatePlaylist(ctx, "Mix", false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if userCalls != "yes" {
			t.Error("expected profile fetch before create")
		}
		if createPath != "/users/alice/playlists" {
			t.Errorf("unexpected create path %s", createPath)
		}
		if created.ID != "new-playlist" {
			t.Errorf("unexpected playlist id %s", created.ID)
		}
	})

	t.Run("Missing ID Is Malformed", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/me" {
				fmt.Fprint(w, `{"id":"alice"}`)
				return
			}
			fmt.Fprint(w, `{"name":"Mix"}`)
		}))

		_, err := client.CreatePlaylist(ctx, "Mix", false)
		if !errors.Is(err, shared.ErrMalformedResponse) {
			t.Errorf("expected ErrMalformedResponse, got %v", err)
		}
	})
}

func TestClientRecommendations(t *testing.T) {
	var query map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{}
		for k, v := range r.URL.Query() {
			query[k] = v[0]
		}
		fmt.Fprint(w, `{"tracks":[{"id":"r1","name":"Rec"}]}`)
	}))

	tracks, err := client.Recommendations(context.Background(), RecommendationQuery{
		TrackIDs:         []string{"t1", "t2"},
		Limit:            20,
		MinPopularity:    20,
		TargetPopularity: 100,
		Features:         map[string]float64{"min_valence": 0.7, "target_valence": 1},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(tracks) != 1 || tracks[0].ID != "r1" {
		t.Errorf("unexpected tracks %v", tracks)
	}

	if query["seed_tracks"] != "t1,t2" {
		t.Errorf("unexpected seed_tracks %q", query["seed_tracks"])
	}
	if query["limit"] != "20" || query["min_popularity"] != "20" || query["target_popularity"] != "100" {
		t.Errorf("unexpected pagination params %v", query)
	}
	if query["min_valence"] != "0.7" || query["target_valence"] != "1" {
		t.Errorf("unexpected feature params %v", query)
	}
}

func TestClientMutations(t *testing.T) {
	ctx := context.Background()

	t.Run("SetLiked Methods", func(t *testing.T) {
		var methods []string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			w.WriteHeader(http.StatusOK)
		}))

		if err := client.SetLiked(ctx, "t1", true); err != nil {
			t.Fatal(err)
		}
		if err := client.SetLiked(ctx, "t1", false); err != nil {
			t.Fatal(err)
		}
		if len(methods) != 2 || methods[0] != http.MethodPut || methods[1] != http.MethodDelete {
			t.Errorf("unexpected methods %v", methods)
		}
	})

	t.Run("RemoveTracks Body Shape", func(t *testing.T) {
		var body struct {
			Tracks []struct {
				URI string `json:"uri"`
			} `json:"tracks"`
		}
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusOK)
		}))

		if err := client.RemoveTracksFromPlaylist(ctx, "p1", []string{"t1"}); err != nil {
			t.Fatal(err)
		}
		if len(body.Tracks) != 1 || body.Tracks[0].URI != "spotify:track:t1" {
			t.Errorf("unexpected body %+v", body)
		}
	})

	t.Run("Remove Without Tracks", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		if err := client.RemoveTracksFromPlaylist(ctx, "p1", nil); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Follow Sends Private Flag", func(t *testing.T) {
		var body map[string]bool
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&body)
			w.WriteHeader(http.StatusOK)
		}))

		if err := client.FollowPlaylist(ctx, "p1"); err != nil {
			t.Fatal(err)
		}
		if public, ok := body["public"]; !ok || public {
			t.Errorf("expected public=false in body, got %v", body)
		}
	})

	t.Run("Unfollow Deletes Followers", func(t *testing.T) {
		var method, path string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method, path = r.Method, r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))

		if err := client.UnfollowPlaylist(ctx, "p1"); err != nil {
			t.Fatal(err)
		}
		if method != http.MethodDelete || path != "/playlists/p1/followers" {
			t.Errorf("expected DELETE /playlists/p1/followers, got %s %s", method, path)
		}
	})
}
