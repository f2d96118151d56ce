// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"codeberg.org/envios/portal/internal/database"
	"codeberg.org/envios/portal/internal/models"
	"codeberg.org/envios/portal/internal/repository"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	return openTestDB(t, ":memory:")
}

// NewTestFileDB creates a file-backed SQLite database in a temp directory.
// Use it when a test needs several concurrent connections.
func NewTestFileDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	return openTestDB(t, t.TempDir()+"/test.db")
}

func openTestDB(t *testing.T, dsn string) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// NewTestClient creates an active test client in the database.
func NewTestClient(t *testing.T, repo *repository.Repository, email string) *models.Client {
	t.Helper()
	client, err := repo.CreateClient(context.Background(), email, "Test Client", nil)
	require.NoError(t, err)
	return client
}

// NewTestClientInSucursal creates an active test client assigned to a branch.
func NewTestClientInSucursal(t *testing.T, repo *repository.Repository, email, sucursal string) *models.Client {
	t.Helper()
	ctx := context.Background()
	s, err := repo.EnsureSucursal(ctx, sucursal)
	require.NoError(t, err)
	client, err := repo.CreateClient(ctx, email, "Test Client", &s.ID)
	require.NoError(t, err)
	return client
}

// Clock is a manually advanced clock for deterministic expiry tests.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// NewEchoContext creates an Echo context for handler tests.
func NewEchoContext(e *echo.Echo, method, path string, body io.Reader) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

// NewRequest creates an HTTP request for testing.
func NewRequest(method, path string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	return req
}
