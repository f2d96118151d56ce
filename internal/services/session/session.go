// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package session carries the client session identifier in a signed cookie.
// The identifier itself is opaque; the session record lives in the database.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"codeberg.org/envios/portal/internal/config"
	"github.com/gorilla/securecookie"
)

const keyLength = 32

// Manager encodes and decodes the session cookie.
type Manager struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewManager creates a cookie manager. maxAge is the cookie lifetime and
// should match the server side session lifetime. An empty hash key is only
// accepted in development and generates a random key, which invalidates all
// cookies on restart.
func NewManager(cfg *config.SessionConfig, maxAge time.Duration, secure bool) (*Manager, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("session hash key not configured, generating a random key; sessions will not survive a restart")
		hashKey = securecookie.GenerateRandomKey(keyLength)
		if hashKey == nil {
			return nil, errors.New("failed to generate session hash key")
		}
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	seconds := int(maxAge / time.Second)
	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(seconds)

	return &Manager{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: seconds,
		secure: secure,
	}, nil
}

func decodeKey(value, kind string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", kind, err)
	}
	if len(key) != keyLength {
		return nil, fmt.Errorf("invalid session %s key: must be 32 bytes, got %d", kind, len(key))
	}
	return key, nil
}

// Create returns a cookie carrying sessionID.
func (m *Manager) Create(sessionID string) (*http.Cookie, error) {
	value, err := m.codec.Encode(m.name, sessionID)
	if err != nil {
		return nil, fmt.Errorf("encoding session cookie: %w", err)
	}
	return m.cookie(value, m.maxAge), nil
}

// Parse returns the session identifier stored in the request's cookie. A
// missing, tampered or expired cookie yields an empty string and no error.
func (m *Manager) Parse(r *http.Request) (string, error) {
	c, err := r.Cookie(m.name)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var sessionID string
	if err := m.codec.Decode(m.name, c.Value, &sessionID); err != nil {
		slog.Debug("session cookie rejected", "error", err)
		return "", nil
	}
	return sessionID, nil
}

// Clear returns a cookie that deletes the session cookie.
func (m *Manager) Clear() *http.Cookie {
	return m.cookie("", -1)
}

// Name returns the cookie name.
func (m *Manager) Name() string {
	return m.name
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// GenerateKey returns a random hex encoded key suitable for the hash or block
// key settings.
func GenerateKey() (string, error) {
	b := make([]byte, keyLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
