// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Layout wraps content in the page chrome.
func Layout(title string, content templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		appName := T(ctx, "app_name")

		h.raw("<!doctype html>\n<html")
		h.attr("lang", Locale(ctx))
		h.raw(`><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title + " · " + appName)
		h.raw(`</title><link rel="stylesheet"`)
		h.attr("href", CSSPath(ctx))
		h.raw("></head><body>")

		h.raw(`<header class="site"><a href="/">`)
		h.text(appName)
		h.raw("</a>")
		if Session(ctx) != nil {
			h.raw(`<form class="inline" method="post" action="/auth/logout">`)
			h.csrfField(CSRFToken(ctx))
			h.raw(`<button type="submit" class="secondary">`)
			h.text(T(ctx, "logout"))
			h.raw("</button></form>")
		}
		h.raw("</header><main>")
		if h.err != nil {
			return h.err
		}

		if err := content.Render(ctx, w); err != nil {
			return err
		}

		h.raw("</main></body></html>")
		return h.err
	})
}
