// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package auth_test

import (
	"context"
	"testing"

	"codeberg.org/envios/portal/internal/auth"
	"codeberg.org/envios/portal/internal/models"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSession_Empty(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, auth.GetSession(ctx))
	assert.Nil(t, auth.GetClient(ctx))
	assert.False(t, auth.IsAuthenticated(ctx))
}

func TestWithSession(t *testing.T) {
	info := &clientauth.SessionInfo{
		Client: models.ClientSummary{ID: 7, Email: "client@example.com"},
	}

	ctx := auth.WithSession(context.Background(), info)

	assert.Same(t, info, auth.GetSession(ctx))
	client := auth.GetClient(ctx)
	require.NotNil(t, client)
	assert.Equal(t, int64(7), client.ID)
	assert.True(t, auth.IsAuthenticated(ctx))
}
