// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/envios/portal/internal/models"
)

// CreateMagicLinkToken stores a new unconsumed magic link token.
func (r *Repository) CreateMagicLinkToken(ctx context.Context, email, tokenHash string, expiresAt, createdAt time.Time) (*models.MagicLinkToken, error) {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO magic_link_tokens (token_hash, email, expires_at, consumed, created_at) VALUES (?, ?, ?, 0, ?)`,
		tokenHash, email, utc(expiresAt), utc(createdAt))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.MagicLinkToken{
		ID:        id,
		TokenHash: tokenHash,
		Email:     email,
		ExpiresAt: utc(expiresAt),
		CreatedAt: utc(createdAt),
	}, nil
}

// GetMagicLinkToken retrieves a token by its hash, regardless of state.
func (r *Repository) GetMagicLinkToken(ctx context.Context, tokenHash string) (*models.MagicLinkToken, error) {
	var token models.MagicLinkToken
	err := r.q.GetContext(ctx, &token, `SELECT * FROM magic_link_tokens WHERE token_hash = ?`, tokenHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &token, nil
}

// DeleteMagicLinkTokensByEmail deletes every token issued to an email.
func (r *Repository) DeleteMagicLinkTokensByEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM magic_link_tokens WHERE email = ?`, email)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ConsumeMagicLinkToken marks an unconsumed, unexpired token as consumed.
// It reports false when no row matched, i.e. the token was already consumed,
// expired, or never existed. The update is the serialization point between
// concurrent redemptions of the same token.
func (r *Repository) ConsumeMagicLinkToken(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	now = utc(now)
	res, err := r.q.ExecContext(ctx,
		`UPDATE magic_link_tokens SET consumed = 1, consumed_at = ?
		 WHERE token_hash = ? AND consumed = 0 AND expires_at > ?`,
		now, tokenHash, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteStaleMagicLinkTokens deletes consumed and expired tokens.
func (r *Repository) DeleteStaleMagicLinkTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM magic_link_tokens WHERE consumed = 1 OR expires_at <= ?`,
		utc(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
