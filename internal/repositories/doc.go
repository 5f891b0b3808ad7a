// Package repositories implements SQLite persistence for stored
// authorization state.
//
// Key Implementations:
//   - [SessionRepository] : OAuth session persistence keyed by provider,
//     upserting token material so refresh flows never create duplicate rows
package repositories
