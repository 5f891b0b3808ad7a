// package models defines the persistent data model for stored service sessions
package models

import (
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Session stores one provider's OAuth2 token material so authorization
// survives process restarts. One row per provider.
type Session struct {
	id           string
	provider     string
	accessToken  string
	refreshToken string
	tokenType    string
	expiresAt    time.Time
	createdAt    time.Time
	updatedAt    time.Time
}

// NewSession creates a session for a provider from a live token.
func NewSession(provider string, token *oauth2.Token) *Session {
	now := time.Now()
	s := &Session{
		provider:  provider,
		createdAt: now,
		updatedAt: now,
	}
	s.ApplyToken(token)
	return s
}

// RestoreSession rebuilds a session from persisted columns. Timestamps are
// restored separately via [Session.SetTimestamps].
func RestoreSession(id, provider, accessToken, refreshToken, tokenType string, expiresAt time.Time) *Session {
	return &Session{
		id:           id,
		provider:     provider,
		accessToken:  accessToken,
		refreshToken: refreshToken,
		tokenType:    tokenType,
		expiresAt:    expiresAt,
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Provider() string     { return s.provider }
func (s *Session) AccessToken() string  { return s.accessToken }
func (s *Session) RefreshToken() string { return s.refreshToken }
func (s *Session) TokenType() string    { return s.tokenType }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// SetID assigns the generated identifier. Called by the repository on insert.
func (s *Session) SetID(id string) { s.id = id }

// SetTimestamps restores persisted timestamps when loading from storage.
func (s *Session) SetTimestamps(createdAt, updatedAt time.Time) {
	s.createdAt = createdAt
	s.updatedAt = updatedAt
}

// ApplyToken copies token material into the session and bumps updated_at.
// A token without a refresh token keeps the previously stored one, since
// the provider only issues it on the first grant.
func (s *Session) ApplyToken(token *oauth2.Token) {
	if token == nil {
		return
	}
	s.accessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.refreshToken = token.RefreshToken
	}
	s.tokenType = token.TokenType
	s.expiresAt = token.Expiry
	s.updatedAt = time.Now()
}

// Token rebuilds the [oauth2.Token] this session stores.
func (s *Session) Token() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  s.accessToken,
		RefreshToken: s.refreshToken,
		TokenType:    s.tokenType,
		Expiry:       s.expiresAt,
	}
}

// Expired reports whether the stored access token is past its expiry. A zero
// expiry means the provider never set one and the token is treated as live.
func (s *Session) Expired() bool {
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

// Validate checks required session fields.
func (s *Session) Validate() error {
	if s.provider == "" {
		return fmt.Errorf("session provider is required")
	}
	if s.accessToken == "" {
		return fmt.Errorf("session access token is required")
	}
	return nil
}
