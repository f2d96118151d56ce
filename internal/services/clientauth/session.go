// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clientauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"codeberg.org/envios/portal/internal/models"
	"codeberg.org/envios/portal/internal/repository"
)

// SessionInfo is a validated session together with its client.
type SessionInfo struct {
	Session models.ClientSession
	Client  models.ClientSummary
}

// CreateSession starts a session for clientID and returns its identifier.
// An empty userAgent is stored as NULL.
func (a *Authenticator) CreateSession(ctx context.Context, clientID int64, userAgent string) (string, error) {
	id, err := generateSecret()
	if err != nil {
		return "", err
	}

	now := a.now()
	sess := &models.ClientSession{
		IDHash:       HashSecret(id),
		ClientID:     clientID,
		CreatedAt:    now,
		ExpiresAt:    now.Add(a.cfg.SessionTTL),
		LastActiveAt: now,
	}
	if userAgent != "" {
		userAgent = truncateUTF8(userAgent, maxUserAgentLength)
		sess.UserAgent = &userAgent
	}

	if err := a.repo.CreateClientSession(ctx, sess); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	slog.Info("session_created", "client_id", clientID, "expires_at", sess.ExpiresAt)
	return id, nil
}

// ValidateSession returns the session and its client when sessionID names an
// unexpired session of an existing, non-archived client, and nil otherwise.
// A successful validation moves the session's last-active time to now.
// Expired sessions are left in place for Sweep.
func (a *Authenticator) ValidateSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	if sessionID == "" {
		return nil, nil
	}

	hash := HashSecret(sessionID)
	row, err := a.repo.GetClientSession(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	now := a.now()
	if row.IsExpired(now) {
		slog.Debug("session_rejected", "reason", reasonExpired, "client_id", row.ClientID)
		return nil, nil
	}
	if row.Client.Archived {
		slog.Debug("session_rejected", "reason", "client_archived", "client_id", row.ClientID)
		return nil, nil
	}

	if err := a.repo.TouchClientSession(ctx, hash, now); err != nil {
		return nil, fmt.Errorf("failed to update session activity: %w", err)
	}
	row.LastActiveAt = now

	return &SessionInfo{Session: row.ClientSession, Client: row.Client}, nil
}

// RevokeSession deletes a session. Revoking an unknown session is a no-op.
func (a *Authenticator) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := a.repo.DeleteClientSession(ctx, HashSecret(sessionID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RevokeAllSessions deletes every session of a client and returns how many
// were removed.
func (a *Authenticator) RevokeAllSessions(ctx context.Context, clientID int64) (int64, error) {
	n, err := a.repo.DeleteClientSessionsByClient(ctx, clientID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete sessions: %w", err)
	}
	slog.Info("sessions_revoked", "client_id", clientID, "count", n)
	return n, nil
}

// ListSessions returns the unexpired sessions of a client.
func (a *Authenticator) ListSessions(ctx context.Context, clientID int64) ([]models.ClientSession, error) {
	sessions, err := a.repo.ListActiveClientSessions(ctx, clientID, a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// truncateUTF8 shortens s to at most n bytes without splitting a rune.
// Invalid sequences are dropped.
func truncateUTF8(s string, n int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
