package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/quietriver/cadence/internal/models"
	"github.com/quietriver/cadence/internal/shared"
)

// SessionRepository persists [models.Session] rows, one per provider.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new [SessionRepository] with the given
// database connection.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save upserts the session keyed by provider. A new session gets a generated
// ID; an existing provider row keeps its ID and created_at.
func (r *SessionRepository) Save(session *models.Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if session.ID() == "" {
		session.SetID(shared.GenerateID())
	}

	query := `
		INSERT INTO sessions (id, provider, access_token, refresh_token, token_type, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`

	_, err := r.db.Exec(query,
		session.ID(), session.Provider(), session.AccessToken(), session.RefreshToken(),
		session.TokenType(), session.ExpiresAt(), session.CreatedAt(), session.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Get retrieves the stored session for a provider.
func (r *SessionRepository) Get(provider string) (*models.Session, error) {
	query := `
		SELECT id, provider, access_token, refresh_token, token_type, expires_at, created_at, updated_at
		FROM sessions
		WHERE provider = ?
	`

	var (
		id           string
		prov         string
		accessToken  string
		refreshToken sql.NullString
		tokenType    sql.NullString
		expiresAt    sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)

	err := r.db.QueryRow(query, provider).Scan(
		&id, &prov, &accessToken, &refreshToken, &tokenType, &expiresAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no session for %s", shared.ErrNotAuthorized, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	session := models.RestoreSession(id, prov, accessToken, refreshToken.String, tokenType.String, expiresAt.Time)
	session.SetTimestamps(createdAt, updatedAt)
	return session, nil
}

// Delete removes the stored session for a provider. Deleting an absent
// session is an error so sign-out feedback is accurate.
func (r *SessionRepository) Delete(provider string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE provider = ?`, provider)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no session stored for %s", provider)
	}

	return nil
}
