// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware provides Echo middleware for client sessions, locale
// detection and rate limiting.
package middleware

import (
	"context"
	"net/http"

	"codeberg.org/envios/portal/internal/auth"
	"codeberg.org/envios/portal/internal/htmx"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"github.com/labstack/echo/v4"
)

// LoginPath is where unauthenticated clients are sent.
const LoginPath = "/auth/login"

// SessionValidator resolves a session identifier to a session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*clientauth.SessionInfo, error)
}

// CookieReader extracts the session identifier from a request.
type CookieReader interface {
	Parse(r *http.Request) (string, error)
}

// LoadClient validates the session cookie and stores the session in the
// request context. Requests without a valid session pass through
// unauthenticated.
func LoadClient(sessions SessionValidator, cookies CookieReader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sessionID, err := cookies.Parse(c.Request())
			if err != nil || sessionID == "" {
				return next(c)
			}

			info, err := sessions.ValidateSession(c.Request().Context(), sessionID)
			if err != nil {
				return err
			}
			if info != nil {
				ctx := auth.WithSession(c.Request().Context(), info)
				c.SetRequest(c.Request().WithContext(ctx))
			}
			return next(c)
		}
	}
}

// RequireClient redirects unauthenticated requests to the login page.
func RequireClient(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !auth.IsAuthenticated(c.Request().Context()) {
			return htmx.Redirect(c, http.StatusSeeOther, LoginPath)
		}
		return next(c)
	}
}

// RedirectIfClient sends already signed-in clients to path.
func RedirectIfClient(path string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.IsAuthenticated(c.Request().Context()) {
				return htmx.Redirect(c, http.StatusSeeOther, path)
			}
			return next(c)
		}
	}
}
