// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Sucursal is a branch of the business that owns a set of clients.
type Sucursal struct { //nolint:govet // fieldalignment: readability over optimization
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Client is a customer of the business who may sign in to the portal.
type Client struct { //nolint:govet // fieldalignment: readability over optimization
	ID         int64     `db:"id" json:"id"`
	Email      string    `db:"email" json:"email"`
	Name       string    `db:"name" json:"name"`
	SucursalID *int64    `db:"sucursal_id" json:"sucursal_id,omitempty"`
	Archived   bool      `db:"archived" json:"archived"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClientSummary is the projection of a client that authentication needs.
type ClientSummary struct { //nolint:govet // fieldalignment: readability over optimization
	ID           int64   `db:"id" json:"id"`
	Email        string  `db:"email" json:"email"`
	Name         string  `db:"name" json:"name"`
	Archived     bool    `db:"archived" json:"archived"`
	SucursalName *string `db:"sucursal_name" json:"sucursal_name,omitempty"`
}
