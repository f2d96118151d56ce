// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"sync"

	"codeberg.org/envios/portal/internal/auth"
	"codeberg.org/envios/portal/internal/htmx"
	"codeberg.org/envios/portal/internal/i18n"
	"codeberg.org/envios/portal/internal/middleware"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"codeberg.org/envios/portal/internal/services/session"
	"codeberg.org/envios/portal/internal/templates"
	"github.com/labstack/echo/v4"
)

// AuthHandlers contains the sign-in, sign-out and portal home handlers.
type AuthHandlers struct {
	auth     *clientauth.Authenticator
	notifier clientauth.Notifier
	sessions *session.Manager
	baseURL  string
	pending  sync.WaitGroup
}

// NewAuth creates a new AuthHandlers instance.
func NewAuth(a *clientauth.Authenticator, n clientauth.Notifier, sess *session.Manager, baseURL string) *AuthHandlers {
	return &AuthHandlers{
		auth:     a,
		notifier: n,
		sessions: sess,
		baseURL:  baseURL,
	}
}

// LoginPage renders the sign-in form.
func (h *AuthHandlers) LoginPage(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Login("", ""))
}

// RequestLink issues a magic link and mails it. The response does not reveal
// whether the address belongs to a client.
func (h *AuthHandlers) RequestLink(c echo.Context) error {
	ctx := c.Request().Context()
	email := strings.TrimSpace(c.FormValue("email"))

	if !validEmail(email) {
		return Render(c, http.StatusUnprocessableEntity,
			templates.Login(email, i18n.T(ctx, "login_email_invalid")))
	}

	token, ok, err := h.auth.Issue(ctx, email)
	if err != nil {
		return InternalServerError(c, "failed to issue magic link", err)
	}
	if ok {
		h.send(ctx, email, clientauth.VerifyURL(h.baseURL, token))
	}

	return Render(c, http.StatusOK, templates.LinkSent(int(h.auth.TokenTTL().Minutes())))
}

// send delivers the link in the background so the response time does not
// depend on whether a mail goes out.
func (h *AuthHandlers) send(ctx context.Context, email, link string) {
	ctx = context.WithoutCancel(ctx)
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		if err := h.notifier.SendMagicLink(ctx, email, link); err != nil {
			slog.Error("failed to send magic link", "error", err, "email", email)
		}
	}()
}

// Wait blocks until all magic link mails in flight are handed off.
func (h *AuthHandlers) Wait() {
	h.pending.Wait()
}

// Verify redeems a magic link and starts a session.
func (h *AuthHandlers) Verify(c echo.Context) error {
	ctx := c.Request().Context()

	clientID, ok, err := h.auth.Verify(ctx, c.QueryParam("token"))
	if err != nil {
		return InternalServerError(c, "failed to verify magic link", err)
	}
	if !ok {
		return Render(c, http.StatusBadRequest, templates.LinkInvalid())
	}

	// A browser that was signed in as someone else gives up that session.
	if previous, _ := h.sessions.Parse(c.Request()); previous != "" {
		if err := h.auth.RevokeSession(ctx, previous); err != nil {
			slog.Warn("failed to revoke previous session", "error", err)
		}
	}

	sessionID, err := h.auth.CreateSession(ctx, clientID, c.Request().UserAgent())
	if err != nil {
		return InternalServerError(c, "failed to create session", err)
	}

	cookie, err := h.sessions.Create(sessionID)
	if err != nil {
		return InternalServerError(c, "failed to create session cookie", err)
	}
	c.SetCookie(cookie)

	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout ends the current session.
func (h *AuthHandlers) Logout(c echo.Context) error {
	sessionID, _ := h.sessions.Parse(c.Request())
	if err := h.auth.RevokeSession(c.Request().Context(), sessionID); err != nil {
		return InternalServerError(c, "failed to revoke session", err)
	}

	c.SetCookie(h.sessions.Clear())
	return htmx.Redirect(c, http.StatusSeeOther, middleware.LoginPath)
}

// LogoutAll ends every session of the signed-in client.
func (h *AuthHandlers) LogoutAll(c echo.Context) error {
	info := auth.GetSession(c.Request().Context())
	if info != nil {
		if _, err := h.auth.RevokeAllSessions(c.Request().Context(), info.Client.ID); err != nil {
			return InternalServerError(c, "failed to revoke sessions", err)
		}
	}

	c.SetCookie(h.sessions.Clear())
	return htmx.Redirect(c, http.StatusSeeOther, middleware.LoginPath)
}

// Home renders the portal start page.
func (h *AuthHandlers) Home(c echo.Context) error {
	ctx := c.Request().Context()
	info := auth.GetSession(ctx)
	if info == nil {
		return htmx.Redirect(c, http.StatusSeeOther, middleware.LoginPath)
	}

	sessions, err := h.auth.ListSessions(ctx, info.Client.ID)
	if err != nil {
		return InternalServerError(c, "failed to list sessions", err)
	}

	return Render(c, http.StatusOK, templates.Home(info, len(sessions)))
}

// RateLimited renders the page for clients that requested too many links.
func RateLimited(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "60")
	return Render(c, http.StatusTooManyRequests, templates.RateLimited())
}

// validEmail accepts a bare address such as client@example.com and rejects
// display-name forms.
func validEmail(s string) bool {
	if s == "" || len(s) > 254 {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	return addr.Address == s
}
