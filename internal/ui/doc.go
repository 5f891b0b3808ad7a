// Package ui implements an interactive terminal interface using bubbletea's
// Elm architecture.
//
// The TUI cycles through the top-level views with a track drill-down:
//  1. [PlaylistView] : Browse playlists, toggle sort, open liked songs
//  2. [TrackView] : Inspect a playlist's tracks and remove entries
//  3. [RecommendationView] : Generate and prune recommendation sets
//  4. [DeviceView] : Watch the playback devices the poller discovers
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View
// pattern. External cache changes arrive as [RefreshMsg] values sent through
// the running program, so the poller and the cache layer can trigger redraws
// without touching the model directly.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, tab, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
