// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"codeberg.org/envios/portal/internal/config"
	"codeberg.org/envios/portal/internal/database"
	"codeberg.org/envios/portal/internal/i18n"
	"codeberg.org/envios/portal/internal/ratelimit"
	"codeberg.org/envios/portal/internal/repository"
	"codeberg.org/envios/portal/internal/services/clientauth"
	"codeberg.org/envios/portal/internal/services/email"
	"codeberg.org/envios/portal/internal/services/session"
	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
)

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	SetupLogger(cfg.Log.Level, cfg.Log.Format)

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database, migrations are applied on open
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	repo := repository.New(db)
	authenticator := clientauth.New(repo, clientauth.Config{
		TokenTTL:   cfg.Auth.TokenTTL,
		SessionTTL: cfg.Auth.SessionTTL,
	})

	notifier, err := newNotifier(cfg, authenticator.TokenTTL())
	if err != nil {
		return err
	}

	sessions, err := session.NewManager(&cfg.Session, authenticator.SessionTTL(),
		strings.HasPrefix(cfg.Server.BaseURL, "https://"))
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	limiter, closeLimiter, err := newLimiter(bgCtx, &cfg.RateLimit)
	if err != nil {
		return err
	}
	defer closeLimiter()

	if cfg.Maintenance.SweepInterval > 0 {
		go authenticator.RunSweeper(bgCtx, cfg.Maintenance.SweepInterval)
	}

	e, authHandlers := newEcho(&routerDeps{
		cfg:      cfg,
		repo:     repo,
		auth:     authenticator,
		notifier: notifier,
		sessions: sessions,
		limiter:  limiter,
	})

	err = startWithGracefulShutdown(e, cfg)
	stopBackground()
	authHandlers.Wait()
	return err
}

// newNotifier returns the SMTP mailer, or a logging stand-in when SMTP is not
// configured.
func newNotifier(cfg *config.Config, tokenTTL time.Duration) (clientauth.Notifier, error) {
	if !cfg.SMTP.Enabled() {
		slog.Warn("SMTP not configured, magic links are written to the log")
		return email.LogService{}, nil
	}
	svc, err := email.NewService(&cfg.SMTP, tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create email service: %w", err)
	}
	return svc, nil
}

// newLimiter returns a limiter shared through Redis when a URL is configured
// and a per-process limiter otherwise. The returned func releases resources.
func newLimiter(ctx context.Context, cfg *config.RateLimitConfig) (ratelimit.Limiter, func(), error) {
	if cfg.Requests <= 0 {
		slog.Warn("rate limiting disabled")
		return nil, func() {}, nil
	}
	if cfg.Window <= 0 {
		return nil, nil, fmt.Errorf("rate limit window must be positive, got %s", cfg.Window)
	}

	if cfg.RedisURL != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		slog.Info("rate limiting with redis", "requests", cfg.Requests, "window", cfg.Window)
		closeFn := func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close redis client", "error", err)
			}
		}
		return ratelimit.NewRedisLimiter(rdb, ratelimit.DefaultPrefix, cfg.Requests, cfg.Window), closeFn, nil
	}

	limiter := ratelimit.NewMemoryLimiter(cfg.Requests, cfg.Window)
	go limiter.RunCleanup(ctx)
	return limiter, func() {}, nil
}

func startWithGracefulShutdown(e *echo.Echo, cfg *config.Config) error {
	tlsResult, err := SetupTLS(cfg)
	if err != nil {
		return fmt.Errorf("TLS setup failed: %w", err)
	}

	errChan := make(chan error, 2)

	// HTTP redirect server for ACME mode
	var httpServer *http.Server

	switch tlsResult.Mode {
	case config.TLSModeOff:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case config.TLSModeACME:
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, ":443", tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

		httpServer = &http.Server{
			Addr:              ":80",
			Handler:           tlsResult.HTTPHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			slog.Info("HTTP to HTTPS redirect active", "addr", ":80")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()

	case config.TLSModeManual:
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		go func() {
			slog.Info("Server running", "url", cfg.Server.BaseURL)
			if err := startTLSServer(e, addr, tlsResult.TLSConfig); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errChan <- err
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown main server", "error", err)
	}

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP redirect server", "error", err)
		}
	}

	slog.Info("server stopped")
	return nil
}

// startTLSServer starts the Echo server with a custom TLS configuration.
func startTLSServer(e *echo.Echo, addr string, tlsConfig *tls.Config) error {
	lc := &net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return err
	}
	e.TLSListener = tls.NewListener(ln, tlsConfig)
	e.TLSServer.TLSConfig = tlsConfig
	return e.Server.Serve(e.TLSListener)
}
