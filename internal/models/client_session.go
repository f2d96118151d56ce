// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// ClientSession is a signed-in portal session. Only the SHA256 hash of the
// session identifier is stored; the plaintext lives in the client's cookie.
type ClientSession struct { //nolint:govet // fieldalignment: readability over optimization
	IDHash       string    `db:"id_hash" json:"-"`
	ClientID     int64     `db:"client_id" json:"client_id"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	LastActiveAt time.Time `db:"last_active_at" json:"last_active_at"`
}

// IsExpired reports whether the session is past its expiry at now.
func (s *ClientSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
