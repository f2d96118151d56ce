// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// MagicLinkToken is a single-use sign-in credential mailed to a client.
// Only the SHA256 hash of the token is stored.
type MagicLinkToken struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64      `db:"id" json:"id"`
	TokenHash  string     `db:"token_hash" json:"-"`
	Email      string     `db:"email" json:"email"`
	ExpiresAt  time.Time  `db:"expires_at" json:"expires_at"`
	Consumed   bool       `db:"consumed" json:"consumed"`
	ConsumedAt *time.Time `db:"consumed_at" json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// IsExpired reports whether the token has reached its expiry at now.
func (t *MagicLinkToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsable reports whether the token can still be redeemed at now.
func (t *MagicLinkToken) IsUsable(now time.Time) bool {
	return !t.Consumed && !t.IsExpired(now)
}
