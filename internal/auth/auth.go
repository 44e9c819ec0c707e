// Package auth validates the API keys that guard the HTTP surface.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/postforge/postforge/internal/config"
)

// Authenticator validates API keys against the configured key hashes.
type Authenticator struct {
	keys map[string]config.APIKeyConfig // keyhash -> key entry
}

// NewAuthenticator builds an authenticator from configured keys.
func NewAuthenticator(keys []config.APIKeyConfig) *Authenticator {
	auth := &Authenticator{keys: make(map[string]config.APIKeyConfig, len(keys))}
	for _, k := range keys {
		auth.keys[k.KeyHash] = k
	}
	return auth
}

// Enabled reports whether any keys are configured. With no keys the
// server runs open, which is only sensible for local use.
func (a *Authenticator) Enabled() bool {
	return len(a.keys) > 0
}

// ValidateAPIKey checks a presented key and returns its config entry.
func (a *Authenticator) ValidateAPIKey(apiKey string) (config.APIKeyConfig, error) {
	keyHash := HashAPIKey(apiKey)

	entry, ok := a.keys[keyHash]
	if !ok {
		return config.APIKeyConfig{}, fmt.Errorf("invalid API key")
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(keyHash), []byte(entry.KeyHash)) != 1 {
		return config.APIKeyConfig{}, fmt.Errorf("invalid API key")
	}

	return entry, nil
}

// ExtractAPIKey extracts the API key from the Authorization header.
func ExtractAPIKey(r *http.Request) (string, error) {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid Authorization header format")
	}

	if strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("unsupported authorization scheme")
	}

	return parts[1], nil
}

// HashAPIKey creates a SHA-256 hash of an API key for storage.
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
