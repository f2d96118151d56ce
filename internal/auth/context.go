// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package auth provides authentication context helpers.
package auth

import (
	"context"

	"codeberg.org/envios/portal/internal/ctxkeys"
	"codeberg.org/envios/portal/internal/models"
	"codeberg.org/envios/portal/internal/services/clientauth"
)

// WithSession returns a copy of ctx carrying the validated session.
func WithSession(ctx context.Context, info *clientauth.SessionInfo) context.Context {
	return context.WithValue(ctx, ctxkeys.Session{}, info)
}

// GetSession returns the validated session from the context, or nil if the
// request is not authenticated.
func GetSession(ctx context.Context) *clientauth.SessionInfo {
	if info, ok := ctx.Value(ctxkeys.Session{}).(*clientauth.SessionInfo); ok {
		return info
	}
	return nil
}

// GetClient returns the signed-in client, or nil.
func GetClient(ctx context.Context) *models.ClientSummary {
	if info := GetSession(ctx); info != nil {
		return &info.Client
	}
	return nil
}

// IsAuthenticated returns true if the context has a signed-in client.
func IsAuthenticated(ctx context.Context) bool {
	return GetSession(ctx) != nil
}
