// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/envios/portal/internal/models"
)

// SessionWithClient is a session joined with its owning client.
type SessionWithClient struct {
	models.ClientSession
	Client models.ClientSummary `db:"client"`
}

// CreateClientSession stores a new session.
func (r *Repository) CreateClientSession(ctx context.Context, s *models.ClientSession) error {
	s.CreatedAt = utc(s.CreatedAt)
	s.ExpiresAt = utc(s.ExpiresAt)
	s.LastActiveAt = utc(s.LastActiveAt)
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO client_sessions (id_hash, client_id, user_agent, created_at, expires_at, last_active_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.IDHash, s.ClientID, s.UserAgent, s.CreatedAt, s.ExpiresAt, s.LastActiveAt)
	return err
}

// GetClientSession retrieves a session by the hash of its identifier,
// joined with the minimal client projection.
func (r *Repository) GetClientSession(ctx context.Context, idHash string) (*SessionWithClient, error) {
	var row SessionWithClient
	err := r.q.GetContext(ctx, &row, `
		SELECT cs.id_hash, cs.client_id, cs.user_agent, cs.created_at, cs.expires_at, cs.last_active_at,
		       c.id AS "client.id", c.email AS "client.email", c.name AS "client.name",
		       c.archived AS "client.archived", s.name AS "client.sucursal_name"
		FROM client_sessions cs
		JOIN clients c ON c.id = cs.client_id
		LEFT JOIN sucursales s ON s.id = c.sucursal_id
		WHERE cs.id_hash = ?`, idHash)
	if err != nil {
		return nil, wrapError(err)
	}
	return &row, nil
}

// TouchClientSession sets the last-active timestamp of a session.
func (r *Repository) TouchClientSession(ctx context.Context, idHash string, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE client_sessions SET last_active_at = ? WHERE id_hash = ?`,
		utc(now), idHash)
	return err
}

// ListActiveClientSessions returns the unexpired sessions of a client,
// most recently active first.
func (r *Repository) ListActiveClientSessions(ctx context.Context, clientID int64, now time.Time) ([]models.ClientSession, error) {
	var sessions []models.ClientSession
	err := r.q.SelectContext(ctx, &sessions,
		`SELECT * FROM client_sessions WHERE client_id = ? AND expires_at >= ? ORDER BY last_active_at DESC`,
		clientID, utc(now))
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// DeleteClientSession deletes a session. Deleting a missing session is not an error.
func (r *Repository) DeleteClientSession(ctx context.Context, idHash string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM client_sessions WHERE id_hash = ?`, idHash)
	return err
}

// DeleteClientSessionsByClient deletes every session of a client.
func (r *Repository) DeleteClientSessionsByClient(ctx context.Context, clientID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM client_sessions WHERE client_id = ?`, clientID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteExpiredClientSessions deletes sessions whose expiry is before now.
func (r *Repository) DeleteExpiredClientSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM client_sessions WHERE expires_at < ?`, utc(now))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
