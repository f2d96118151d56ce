// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clientauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// secretBytes is the entropy of tokens and session identifiers (256 bits).
const secretBytes = 32

// generateSecret returns a URL-safe random string from the system CSPRNG.
func generateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashSecret computes the SHA256 hash under which a token or session
// identifier is stored.
func HashSecret(secret string) string {
	hash := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hash[:])
}
