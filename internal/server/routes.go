// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"net/http"

	"codeberg.org/envios/portal/internal/assets"
	"codeberg.org/envios/portal/internal/config"
	"codeberg.org/envios/portal/internal/handlers"
	"codeberg.org/envios/portal/internal/middleware"
	"codeberg.org/envios/portal/internal/ratelimit"
	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"codeberg.org/envios/portal/internal/services/session"
	"github.com/labstack/echo/v4"
)

// routerDeps holds dependencies needed to set up routes
type routerDeps struct {
	cfg      *config.Config
	repo     *repository.Repository
	auth     *clientauth.Authenticator
	notifier clientauth.Notifier
	sessions *session.Manager
	limiter  ratelimit.Limiter
}

// newEcho builds the Echo instance with middleware and routes. The returned
// AuthHandlers must be drained with Wait on shutdown.
func newEcho(deps *routerDeps) (*echo.Echo, *handlers.AuthHandlers) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	setupMiddleware(e, deps)
	authHandlers := setupRoutes(e, deps)
	return e, authHandlers
}

func setupRoutes(e *echo.Echo, deps *routerDeps) *handlers.AuthHandlers {
	h := handlers.New(deps.repo)
	a := handlers.NewAuth(deps.auth, deps.notifier, deps.sessions, deps.cfg.Server.BaseURL)

	// Static files
	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", assets.FileServer())))

	e.GET("/health", h.Health)

	g := e.Group("/auth")
	g.GET("/login", a.LoginPage, middleware.RedirectIfClient("/"))
	g.POST("/login", a.RequestLink, middleware.RateLimit(deps.limiter, handlers.RateLimited))
	g.GET("/verify", a.Verify)
	g.POST("/logout", a.Logout)
	g.POST("/logout-all", a.LogoutAll, middleware.RequireClient)

	e.GET("/", a.Home, middleware.RequireClient)

	return a
}
