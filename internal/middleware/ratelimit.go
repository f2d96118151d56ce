// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"log/slog"

	"codeberg.org/envios/portal/internal/ratelimit"
	"github.com/labstack/echo/v4"
)

// RateLimit counts requests per client IP and calls onLimited instead of the
// handler once the limit is reached. When the limiter fails the request is
// let through.
func RateLimit(limiter ratelimit.Limiter, onLimited echo.HandlerFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		if limiter == nil {
			return next
		}
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, err := limiter.Allow(c.Request().Context(), ip)
			if err != nil {
				slog.Error("rate limiter failed, allowing request", "error", err, "ip", ip)
				return next(c)
			}
			if !ok {
				slog.Warn("rate_limited", "ip", ip, "path", c.Request().URL.Path)
				return onLimited(c)
			}
			return next(c)
		}
	}
}
