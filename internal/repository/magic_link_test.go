// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMagicLinkToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateMagicLinkToken(ctx, "client@example.com", "hash1", now.Add(15*time.Minute), now)
	require.NoError(t, err)

	token, err := repo.GetMagicLinkToken(ctx, "hash1")

	require.NoError(t, err)
	assert.NotZero(t, token.ID)
	assert.Equal(t, "client@example.com", token.Email)
	assert.False(t, token.Consumed)
	assert.Nil(t, token.ConsumedAt)
	assert.WithinDuration(t, now.Add(15*time.Minute), token.ExpiresAt, time.Millisecond)
}

func TestGetMagicLinkToken_NotFound(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetMagicLinkToken(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteMagicLinkTokensByEmail(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateMagicLinkToken(ctx, "client@example.com", "hash1", now.Add(time.Minute), now)
	require.NoError(t, err)
	_, err = repo.CreateMagicLinkToken(ctx, "client@example.com", "hash2", now.Add(time.Minute), now)
	require.NoError(t, err)
	_, err = repo.CreateMagicLinkToken(ctx, "other@example.com", "hash3", now.Add(time.Minute), now)
	require.NoError(t, err)

	n, err := repo.DeleteMagicLinkTokensByEmail(ctx, "client@example.com")

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetMagicLinkToken(ctx, "hash3")
	assert.NoError(t, err)
}

func TestConsumeMagicLinkToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateMagicLinkToken(ctx, "client@example.com", "hash1", now.Add(time.Minute), now)
	require.NoError(t, err)

	ok, err := repo.ConsumeMagicLinkToken(ctx, "hash1", now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.ConsumeMagicLinkToken(ctx, "hash1", now)
	require.NoError(t, err)
	assert.False(t, ok, "second consume must not match")

	token, err := repo.GetMagicLinkToken(ctx, "hash1")
	require.NoError(t, err)
	assert.True(t, token.Consumed)
	assert.NotNil(t, token.ConsumedAt)
}

func TestConsumeMagicLinkToken_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateMagicLinkToken(ctx, "client@example.com", "hash1", now, now.Add(-15*time.Minute))
	require.NoError(t, err)

	ok, err := repo.ConsumeMagicLinkToken(ctx, "hash1", now)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsumeMagicLinkToken_Unknown(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	ok, err := repo.ConsumeMagicLinkToken(context.Background(), "missing", time.Now())

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteStaleMagicLinkTokens(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	now := time.Now()

	_, err := repo.CreateMagicLinkToken(ctx, "a@example.com", "expired", now.Add(-time.Minute), now.Add(-16*time.Minute))
	require.NoError(t, err)
	_, err = repo.CreateMagicLinkToken(ctx, "b@example.com", "consumed", now.Add(time.Minute), now)
	require.NoError(t, err)
	_, err = repo.ConsumeMagicLinkToken(ctx, "consumed", now)
	require.NoError(t, err)
	_, err = repo.CreateMagicLinkToken(ctx, "c@example.com", "valid", now.Add(time.Minute), now)
	require.NoError(t, err)

	n, err := repo.DeleteStaleMagicLinkTokens(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = repo.GetMagicLinkToken(ctx, "valid")
	assert.NoError(t, err)
}
