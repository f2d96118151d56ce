// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

/*
Package clientauth implements passwordless sign-in for portal clients.

The flow is the following:

 1. A client asks for a sign-in link with an email address. Issue creates a
    single-use token for a known, non-archived client and removes every earlier
    token of that email.
 2. The caller mails the link to the client through a Notifier.
 3. The client follows the link. Verify consumes the token exactly once and
    returns the client id.
 4. CreateSession starts a long-lived session whose identifier goes into a
    cookie. ValidateSession checks it on every request and slides its
    last-active timestamp. RevokeSession ends it.

Negative outcomes (unknown, expired or reused tokens, unknown or expired
sessions) are reported as empty results, never as errors. Errors always mean
the datastore failed.
*/
package clientauth

import (
	"context"
	"time"

	"codeberg.org/envios/portal/internal/repository"
)

const (
	// DefaultTokenTTL is the default for Config.TokenTTL.
	DefaultTokenTTL = 15 * time.Minute

	// DefaultSessionTTL is the default for Config.SessionTTL.
	DefaultSessionTTL = 30 * 24 * time.Hour

	// maxUserAgentLength bounds the stored user agent.
	maxUserAgentLength = 512
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Notifier delivers a sign-in link to an email address.
type Notifier interface {
	SendMagicLink(ctx context.Context, to, link string) error
}

// Config holds Authenticator configuration.
// A zero value is a valid configuration, see constants for default values.
type Config struct {
	// TokenTTL tells how long an issued magic link token remains valid.
	TokenTTL time.Duration

	// SessionTTL tells how long a session remains valid after creation.
	SessionTTL time.Duration

	// Clock is the time source for every expiry decision.
	Clock Clock
}

// Authenticator issues and redeems magic link tokens and manages client
// sessions. It keeps no state between calls and is safe for concurrent use.
type Authenticator struct {
	repo *repository.Repository
	cfg  Config
}

// New creates an Authenticator backed by repo.
func New(repo *repository.Repository, cfg Config) *Authenticator {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = DefaultTokenTTL
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}

	return &Authenticator{repo: repo, cfg: cfg}
}

// TokenTTL returns the configured token lifetime.
func (a *Authenticator) TokenTTL() time.Duration {
	return a.cfg.TokenTTL
}

// SessionTTL returns the configured session lifetime.
func (a *Authenticator) SessionTTL() time.Duration {
	return a.cfg.SessionTTL
}

func (a *Authenticator) now() time.Time {
	return a.cfg.Clock.Now()
}
