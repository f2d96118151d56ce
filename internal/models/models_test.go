// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models_test

import (
	"testing"
	"time"

	"codeberg.org/envios/portal/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestMagicLinkToken_IsExpired(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := &models.MagicLinkToken{ExpiresAt: expiresAt}

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"before expiry", expiresAt.Add(-time.Second), false},
		{"at expiry", expiresAt, true},
		{"after expiry", expiresAt.Add(time.Nanosecond), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, token.IsExpired(tt.now))
		})
	}
}

func TestMagicLinkToken_IsUsable(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	fresh := &models.MagicLinkToken{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, fresh.IsUsable(now))

	consumed := &models.MagicLinkToken{ExpiresAt: now.Add(time.Minute), Consumed: true}
	assert.False(t, consumed.IsUsable(now))

	expired := &models.MagicLinkToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.IsUsable(now))
}

func TestClientSession_IsExpired(t *testing.T) {
	expiresAt := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	sess := &models.ClientSession{ExpiresAt: expiresAt}

	assert.False(t, sess.IsExpired(expiresAt.Add(-time.Hour)))
	assert.False(t, sess.IsExpired(expiresAt), "a session is still valid at its exact expiry")
	assert.True(t, sess.IsExpired(expiresAt.Add(time.Second)))
}
