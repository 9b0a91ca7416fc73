package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// TokenRepository stores one OAuth token per provider.
type TokenRepository struct {
	db *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) LoadToken(provider string) (*oauth2.Token, error) {
	var (
		token  oauth2.Token
		expiry sql.NullTime
	)

	err := r.db.QueryRow(`
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens WHERE provider = ?`, provider,
	).Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: token for %s", ErrNotFound, provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}

	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return &token, nil
}

// SaveToken upserts the token for provider.
func (r *TokenRepository) SaveToken(provider string, token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("token is nil")
	}

	var expiry sql.NullTime
	if !token.Expiry.IsZero() {
		expiry = sql.NullTime{Time: token.Expiry.UTC(), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO tokens (provider, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(provider) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at`,
		provider, token.AccessToken, token.RefreshToken, token.TokenType, expiry, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// DeleteToken removes the token for provider. Deleting a missing token is not an error.
func (r *TokenRepository) DeleteToken(provider string) error {
	if _, err := r.db.Exec(`DELETE FROM tokens WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
