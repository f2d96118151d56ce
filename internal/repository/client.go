// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"errors"
	"time"

	"codeberg.org/envios/portal/internal/models"
)

const clientSummaryQuery = `
SELECT c.id, c.email, c.name, c.archived, s.name AS sucursal_name
FROM clients c
LEFT JOIN sucursales s ON s.id = c.sucursal_id`

// CreateSucursal creates a new branch.
func (r *Repository) CreateSucursal(ctx context.Context, name string) (*models.Sucursal, error) {
	now := utc(time.Now())
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO sucursales (name, created_at) VALUES (?, ?)`,
		name, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Sucursal{ID: id, Name: name, CreatedAt: now}, nil
}

// GetSucursalByName retrieves a branch by its name.
func (r *Repository) GetSucursalByName(ctx context.Context, name string) (*models.Sucursal, error) {
	var s models.Sucursal
	if err := r.q.GetContext(ctx, &s, `SELECT * FROM sucursales WHERE name = ?`, name); err != nil {
		return nil, wrapError(err)
	}
	return &s, nil
}

// EnsureSucursal returns the branch with the given name, creating it if needed.
func (r *Repository) EnsureSucursal(ctx context.Context, name string) (*models.Sucursal, error) {
	s, err := r.GetSucursalByName(ctx, name)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.CreateSucursal(ctx, name)
}

// CreateClient creates a new, non-archived client.
func (r *Repository) CreateClient(ctx context.Context, email, name string, sucursalID *int64) (*models.Client, error) {
	now := utc(time.Now())
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO clients (email, name, sucursal_id, archived, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)`,
		email, name, sucursalID, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Client{
		ID:         id,
		Email:      email,
		Name:       name,
		SucursalID: sucursalID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// GetClientByID retrieves a client by ID, archived or not.
func (r *Repository) GetClientByID(ctx context.Context, id int64) (*models.Client, error) {
	var c models.Client
	if err := r.q.GetContext(ctx, &c, `SELECT * FROM clients WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// GetClientByEmail retrieves a client by exact email match, archived or not.
func (r *Repository) GetClientByEmail(ctx context.Context, email string) (*models.Client, error) {
	var c models.Client
	if err := r.q.GetContext(ctx, &c, `SELECT * FROM clients WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// GetActiveClientByEmail retrieves a non-archived client by exact email match.
func (r *Repository) GetActiveClientByEmail(ctx context.Context, email string) (*models.ClientSummary, error) {
	var c models.ClientSummary
	err := r.q.GetContext(ctx, &c, clientSummaryQuery+` WHERE c.email = ? AND c.archived = 0`, email)
	if err != nil {
		return nil, wrapError(err)
	}
	return &c, nil
}

// ArchiveClient marks a client as archived.
func (r *Repository) ArchiveClient(ctx context.Context, id int64) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE clients SET archived = 1, updated_at = ? WHERE id = ?`,
		utc(time.Now()), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListClients returns all clients ordered by email.
func (r *Repository) ListClients(ctx context.Context) ([]models.ClientSummary, error) {
	var clients []models.ClientSummary
	if err := r.q.SelectContext(ctx, &clients, clientSummaryQuery+` ORDER BY c.email`); err != nil {
		return nil, err
	}
	return clients, nil
}
