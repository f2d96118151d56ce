// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clientauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"codeberg.org/envios/portal/internal/repository"
)

// Reasons logged when a token is rejected. Callers never see them.
const (
	reasonNotFound      = "not_found"
	reasonExpired       = "expired"
	reasonConsumed      = "consumed"
	reasonReplayRace    = "replay_race"
	reasonClientMissing = "client_missing"
)

// Issue creates a new sign-in token for the non-archived client registered
// under email. The email is matched exactly as stored. When no such client
// exists Issue returns ok=false and no error; the caller must respond the same
// way in both cases.
func (a *Authenticator) Issue(ctx context.Context, email string) (token string, ok bool, err error) {
	_, err = a.repo.GetActiveClientByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Info("magic_link_not_issued", "email", email, "reason", reasonNotFound)
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up client: %w", err)
	}

	token, err = generateSecret()
	if err != nil {
		return "", false, err
	}

	now := a.now()
	expiresAt := now.Add(a.cfg.TokenTTL)

	err = a.repo.InTx(ctx, func(tx *repository.Repository) error {
		if _, err := tx.DeleteMagicLinkTokensByEmail(ctx, email); err != nil {
			return fmt.Errorf("failed to delete previous tokens: %w", err)
		}
		if _, err := tx.CreateMagicLinkToken(ctx, email, HashSecret(token), expiresAt, now); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", false, err
	}

	slog.Info("magic_link_issued", "email", email, "expires_at", expiresAt)
	return token, true, nil
}

// Verify redeems a token and returns the id of the client it was issued to.
// A token yields ok=true at most once: marking it consumed and loading the
// client happen in one transaction whose conditional update only matches an
// unconsumed row. Unknown, expired and reused tokens all return ok=false. A
// token whose client vanished or was archived is burned anyway.
func (a *Authenticator) Verify(ctx context.Context, token string) (clientID int64, ok bool, err error) {
	if token == "" {
		return 0, false, nil
	}

	hash := HashSecret(token)
	now := a.now()

	stored, err := a.repo.GetMagicLinkToken(ctx, hash)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Debug("verify_rejected", "reason", reasonNotFound)
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up token: %w", err)
	}

	if stored.Consumed {
		slog.Warn("verify_rejected", "reason", reasonConsumed, "email", stored.Email)
		return 0, false, nil
	}
	if stored.IsExpired(now) {
		slog.Debug("verify_rejected", "reason", reasonExpired, "email", stored.Email)
		return 0, false, nil
	}

	var reason string
	err = a.repo.InTx(ctx, func(tx *repository.Repository) error {
		consumed, err := tx.ConsumeMagicLinkToken(ctx, hash, now)
		if err != nil {
			return fmt.Errorf("failed to consume token: %w", err)
		}
		if !consumed {
			reason = reasonReplayRace
			return nil
		}

		client, err := tx.GetActiveClientByEmail(ctx, stored.Email)
		if errors.Is(err, repository.ErrNotFound) {
			reason = reasonClientMissing
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up client: %w", err)
		}
		clientID = client.ID
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	if reason != "" {
		slog.Warn("verify_rejected", "reason", reason, "email", stored.Email)
		return 0, false, nil
	}

	slog.Info("magic_link_verified", "client_id", clientID)
	return clientID, true, nil
}

// VerifyURL builds the link a client follows to redeem token.
func VerifyURL(baseURL, token string) string {
	return strings.TrimSuffix(baseURL, "/") + "/auth/verify?token=" + url.QueryEscape(token)
}
