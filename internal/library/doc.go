// Package library keeps an in-memory view of a user's Spotify library
// consistent with the remote service.
//
// # Store
//
// [Store] is the owned, process-lifetime cache: playlists, liked tracks,
// per-playlist track lists, devices, player context, the current
// recommendation set, and UI selection state. Entities are created lazily on
// first access and replaced wholesale on refresh; nothing persists across
// restarts. [Store.ClearAll] forgets all remote data together with the
// selection so the selection can never point at absent data.
//
// # Reconciliation
//
// [Manager] decides whether to serve cached data or refetch, normalizes
// fetched payloads into [PlaylistItem] values with derived fields (album
// name, liked flag, fetch-order index), and writes results back into the
// Store. After any cache mutation it emits a fire-and-forget [Notifier]
// signal so the presentation layer re-reads the cache.
//
// # Devices and recommendations
//
// [Poller] refreshes the device list, diffing fetched device id sets against
// the cache to suppress redundant refreshes, and bounds rate-limit retries to
// a single delayed attempt. [Recommender] builds seed sets from cached liked
// songs and playlist tracks under a fixed seed budget and replaces the
// recommendation state wholesale.
//
// All timers run through an injected clock so retry and refresh scheduling is
// testable with a mock clock.
package library
