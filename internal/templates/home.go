// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"codeberg.org/envios/portal/internal/services/clientauth"
	"github.com/a-h/templ"
)

// Home renders the portal start page for a signed-in client.
func Home(info *clientauth.SessionInfo, activeSessions int) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		client := info.Client

		h.raw("<h1>")
		h.text(TData(ctx, "home_welcome", map[string]any{"Name": client.Name}))
		h.raw("</h1><dl>")

		h.raw("<dt>")
		h.text(T(ctx, "home_email"))
		h.raw("</dt><dd>")
		h.text(client.Email)
		h.raw("</dd>")

		h.raw("<dt>")
		h.text(T(ctx, "home_sucursal"))
		h.raw("</dt><dd>")
		if client.SucursalName != nil {
			h.text(*client.SucursalName)
		} else {
			h.text(T(ctx, "home_sucursal_none"))
		}
		h.raw("</dd>")

		h.raw("<dt>")
		h.text(T(ctx, "home_session"))
		h.raw("</dt><dd>")
		if info.Session.UserAgent != nil {
			h.text(*info.Session.UserAgent)
		} else {
			h.text(T(ctx, "home_session_unknown_device"))
		}
		h.raw("</dd>")

		h.raw("<dt>")
		h.text(T(ctx, "home_session_last_active"))
		h.raw(`</dt><dd><time`)
		h.attr("datetime", info.Session.LastActiveAt.UTC().Format("2006-01-02T15:04:05Z"))
		h.raw(">")
		h.text(info.Session.LastActiveAt.UTC().Format("2006-01-02 15:04 UTC"))
		h.raw("</time></dd></dl>")

		h.raw(`<p class="muted">`)
		h.text(TPlural(ctx, "home_sessions_active", activeSessions))
		h.raw("</p>")

		h.raw(`<form method="post" action="/auth/logout-all">`)
		h.csrfField(CSRFToken(ctx))
		h.raw(`<button type="submit" class="secondary">`)
		h.text(T(ctx, "logout_all"))
		h.raw("</button></form>")
		return h.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "home_title"), body).Render(ctx, w)
	})
}
