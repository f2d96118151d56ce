// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the portal's HTML pages.
package templates

import (
	"context"

	"codeberg.org/envios/portal/internal/auth"
	"codeberg.org/envios/portal/internal/ctxkeys"
	"codeberg.org/envios/portal/internal/i18n"
	"codeberg.org/envios/portal/internal/services/clientauth"
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(ctxkeys.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// TPlural translates a message with plural support.
func TPlural(ctx context.Context, messageID string, count int) string {
	return i18n.TPlural(ctx, messageID, count)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the stylesheet.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(ctxkeys.CSSPath{}).(string); ok {
		return path
	}
	return "/static/css/portal.css"
}

// Session returns the signed-in session from context, or nil.
func Session(ctx context.Context) *clientauth.SessionInfo {
	return auth.GetSession(ctx)
}
