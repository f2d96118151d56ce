// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/envios/portal/internal/templates"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders HTML error pages for errors returned by handlers.
// Internal details are logged, never shown.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	if code >= http.StatusInternalServerError {
		slog.Error("request failed",
			"error", err,
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
	}

	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		err = Render(c, code, templates.NotFound())
	case http.StatusInternalServerError:
		err = Render(c, code, templates.Error())
	default:
		msg := http.StatusText(code)
		if he != nil {
			if s, ok := he.Message.(string); ok {
				msg = s
			}
		}
		err = c.String(code, msg)
	}
	if err != nil {
		slog.Error("failed to render error page", "error", err)
	}
}

// InternalServerError logs err and renders the generic error page.
func InternalServerError(c echo.Context, msg string, err error) error {
	slog.Error(msg, "error", err, "path", c.Request().URL.Path)
	return Render(c, http.StatusInternalServerError, templates.Error())
}
