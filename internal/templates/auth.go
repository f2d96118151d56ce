// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Login renders the sign-in form. email refills the field and errMsg, when
// set, is shown below it.
func Login(email, errMsg string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h1>")
		h.text(T(ctx, "login_title"))
		h.raw("</h1><p>")
		h.text(T(ctx, "login_intro"))
		h.raw(`</p><form method="post" action="/auth/login">`)
		h.csrfField(CSRFToken(ctx))
		h.raw(`<label for="email">`)
		h.text(T(ctx, "login_email_label"))
		h.raw(`</label><input type="email" id="email" name="email" autocomplete="email" required autofocus`)
		h.attr("value", email)
		h.raw(">")
		if errMsg != "" {
			h.raw(`<p class="error" role="alert">`)
			h.text(errMsg)
			h.raw("</p>")
		}
		h.raw(`<button type="submit">`)
		h.text(T(ctx, "login_submit"))
		h.raw("</button></form>")
		return h.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "login_title"), body).Render(ctx, w)
	})
}

// LinkSent renders the confirmation shown after a link was requested. It
// reads the same whether or not the address is known.
func LinkSent(minutes int) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h1>")
		h.text(T(ctx, "link_sent_title"))
		h.raw("</h1><p>")
		h.text(TData(ctx, "link_sent_body", map[string]any{"Minutes": minutes}))
		h.raw(`</p><p><a href="/auth/login">`)
		h.text(T(ctx, "link_sent_again"))
		h.raw("</a></p>")
		return h.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, "link_sent_title"), body).Render(ctx, w)
	})
}

// LinkInvalid renders the page for unusable magic links.
func LinkInvalid() templ.Component {
	return message("link_invalid_title", "link_invalid_body", "link_invalid_action", "/auth/login")
}

// RateLimited renders the page shown when too many links were requested.
func RateLimited() templ.Component {
	return message("rate_limited_title", "rate_limited_body", "", "")
}

// message renders a page with a title, one paragraph and an optional link.
func message(titleID, bodyID, actionID, actionHref string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<h1>")
		h.text(T(ctx, titleID))
		h.raw("</h1><p>")
		h.text(T(ctx, bodyID))
		h.raw("</p>")
		if actionID != "" {
			h.raw(`<a class="button"`)
			h.attr("href", actionHref)
			h.raw(">")
			h.text(T(ctx, actionID))
			h.raw("</a>")
		}
		return h.err
	})

	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return Layout(T(ctx, titleID), body).Render(ctx, w)
	})
}
