// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"crypto/tls"
	"testing"

	"codeberg.org/envios/portal/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTLS_Off(t *testing.T) {
	cfg := &config.Config{Server: config.ServerConfig{Host: "localhost", Port: 8080}}

	result, err := SetupTLS(cfg)

	require.NoError(t, err)
	assert.Equal(t, config.TLSModeOff, result.Mode)
	assert.Nil(t, result.TLSConfig)
}

func TestSetupTLS_ManualMissingFiles(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "portal.example.com", Port: 443},
		TLS: config.TLSConfig{
			Mode:     config.TLSModeManual,
			CertFile: "/nonexistent/cert.pem",
			KeyFile:  "/nonexistent/key.pem",
		},
	}

	_, err := SetupTLS(cfg)

	assert.Error(t, err)
}

func TestSetupManual_RequiresBothFiles(t *testing.T) {
	cfg := &config.Config{TLS: config.TLSConfig{CertFile: "cert.pem"}}

	_, err := setupManual(cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires both")
}

func TestValidateACME(t *testing.T) {
	allFree := func(int) bool { return true }

	tests := []struct {
		name     string
		host     string
		email    string
		portFree func(int) bool
		wantErr  string
	}{
		{"valid", "portal.example.com", "admin@example.com", allFree, ""},
		{"missing email", "portal.example.com", "", allFree, "TLS_EMAIL"},
		{"localhost", "localhost", "admin@example.com", allFree, "public domain"},
		{"ip address", "203.0.113.5", "admin@example.com", allFree, "public domain"},
		{"port 80 busy", "portal.example.com", "admin@example.com", func(p int) bool { return p != 80 }, "port 80"},
		{"port 443 busy", "portal.example.com", "admin@example.com", func(p int) bool { return p != 443 }, "port 443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				Server: config.ServerConfig{Host: tt.host, Port: 443},
				TLS:    config.TLSConfig{Mode: config.TLSModeACME, Email: tt.email},
			}

			err := validateACME(cfg, tt.portFree)

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSetupACME(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "portal.example.com"},
		TLS:    config.TLSConfig{CertDir: t.TempDir(), Email: "admin@example.com"},
	}

	result, err := setupACME(cfg)

	require.NoError(t, err)
	assert.Equal(t, config.TLSModeACME, result.Mode)
	assert.NotNil(t, result.CertManager)
	assert.NotNil(t, result.HTTPHandler)
	assert.NotNil(t, result.TLSConfig)
}

func TestCertFingerprint_Empty(t *testing.T) {
	assert.Empty(t, certFingerprint(&tls.Certificate{}))
}
