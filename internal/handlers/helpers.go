// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"codeberg.org/envios/portal/internal/i18n"
	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render renders a templ component with the given status code. Pages are
// personal to the requesting client and never stored by shared caches.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	ctx := c.Request().Context()
	buf := templ.GetBuffer()
	defer templ.ReleaseBuffer(buf)

	if err := component.Render(ctx, buf); err != nil {
		return err
	}

	h := c.Response().Header()
	h.Set("Content-Language", i18n.GetLocale(ctx))
	h.Set("Cache-Control", "no-store")
	return c.HTML(statusCode, buf.String())
}
