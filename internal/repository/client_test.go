// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClient(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	client, err := repo.CreateClient(ctx, "client@example.com", "Ana", nil)

	require.NoError(t, err)
	assert.NotZero(t, client.ID)
	assert.Equal(t, "client@example.com", client.Email)
	assert.False(t, client.Archived)
	assert.Nil(t, client.SucursalID)
}

func TestCreateClient_DuplicateEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	testutil.NewTestClient(t, repo, "client@example.com")

	_, err := repo.CreateClient(ctx, "client@example.com", "Other", nil)

	assert.Error(t, err)
}

func TestGetClientByID_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetClientByID(context.Background(), 999)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetActiveClientByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	created := testutil.NewTestClientInSucursal(t, repo, "client@example.com", "Miami")

	client, err := repo.GetActiveClientByEmail(ctx, "client@example.com")

	require.NoError(t, err)
	assert.Equal(t, created.ID, client.ID)
	require.NotNil(t, client.SucursalName)
	assert.Equal(t, "Miami", *client.SucursalName)
}

func TestGetActiveClientByEmail_ExactMatch(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestClient(t, repo, "client@example.com")

	_, err := repo.GetActiveClientByEmail(context.Background(), "Client@Example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetActiveClientByEmail_Archived(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	client := testutil.NewTestClient(t, repo, "client@example.com")
	require.NoError(t, repo.ArchiveClient(ctx, client.ID))

	_, err := repo.GetActiveClientByEmail(ctx, "client@example.com")

	assert.ErrorIs(t, err, repository.ErrNotFound)

	archived, err := repo.GetClientByID(ctx, client.ID)
	require.NoError(t, err)
	assert.True(t, archived.Archived)
}

func TestArchiveClient_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.ArchiveClient(context.Background(), 42)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEnsureSucursal(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	first, err := repo.EnsureSucursal(ctx, "Caracas")
	require.NoError(t, err)

	second, err := repo.EnsureSucursal(ctx, "Caracas")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
}

func TestListClients(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	testutil.NewTestClient(t, repo, "b@example.com")
	testutil.NewTestClientInSucursal(t, repo, "a@example.com", "Miami")

	clients, err := repo.ListClients(context.Background())

	require.NoError(t, err)
	require.Len(t, clients, 2)
	assert.Equal(t, "a@example.com", clients[0].Email)
	assert.Equal(t, "b@example.com", clients[1].Email)
	assert.Nil(t, clients[1].SucursalName)
}
