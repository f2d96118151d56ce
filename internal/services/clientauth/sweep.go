// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clientauth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SweepResult counts the rows removed by Sweep.
type SweepResult struct {
	Tokens   int64
	Sessions int64
}

// Sweep deletes consumed or expired tokens and expired sessions.
func (a *Authenticator) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := a.now()

	n, err := a.repo.DeleteStaleMagicLinkTokens(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to sweep tokens: %w", err)
	}
	res.Tokens = n

	n, err = a.repo.DeleteExpiredClientSessions(ctx, now)
	if err != nil {
		return res, fmt.Errorf("failed to sweep sessions: %w", err)
	}
	res.Sessions = n

	slog.Debug("sweep_done", "tokens", res.Tokens, "sessions", res.Sessions)
	return res, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (a *Authenticator) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Sweep(ctx); err != nil && ctx.Err() == nil {
				slog.Error("sweep failed", "error", err)
			}
		}
	}
}
