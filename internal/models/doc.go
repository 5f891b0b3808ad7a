// Package models defines the database-backed entities for stored
// authorization state.
//
//   - [Session] : OAuth token material for one provider, persisted so the
//     cache layer can reconnect without a fresh browser flow
//
// All persistent entities implement the [Model] interface providing ID
// generation, timestamps, and validation.
package models
