package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey  = errors.New("invalid API key")
	ErrKeyExpired  = errors.New("API key expired")
	ErrKeyNotFound = errors.New("API key not found")
	ErrWrongTenant = errors.New("API key belongs to a different tenant")
)

// KeyInfo contains API key metadata. Only the bcrypt hash of the key
// is stored; the plaintext is returned once at generation time.
type KeyInfo struct {
	Hash      string
	TenantID  string
	Label     string
	CreatedAt time.Time
	ExpiresAt time.Time // zero means no expiry
}

// KeyManager manages tenant-scoped API keys
type KeyManager struct {
	keys map[string]*KeyInfo // key ID -> info
	mu   sync.RWMutex
}

// NewKeyManager creates a new API key manager
func NewKeyManager() *KeyManager {
	return &KeyManager{
		keys: make(map[string]*KeyInfo),
	}
}

// GenerateKey creates a new API key for a tenant. The returned value
// has the form fleet_<tenant>_<keyID>.<secret> and is the only time
// the secret is visible.
func (km *KeyManager) GenerateKey(tenantID, label string, ttl time.Duration) (string, error) {
	idBytes := make([]byte, 8)
	if _, err := rand.Read(idBytes); err != nil {
		return "", fmt.Errorf("failed to generate key ID: %w", err)
	}
	secretBytes := make([]byte, 32)
	if _, err := rand.Read(secretBytes); err != nil {
		return "", fmt.Errorf("failed to generate key secret: %w", err)
	}

	keyID := base64.RawURLEncoding.EncodeToString(idBytes)
	secret := base64.RawURLEncoding.EncodeToString(secretBytes)

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash key: %w", err)
	}

	info := &KeyInfo{
		Hash:      string(hash),
		TenantID:  tenantID,
		Label:     label,
		CreatedAt: time.Now(),
	}
	if ttl > 0 {
		info.ExpiresAt = time.Now().Add(ttl)
	}

	km.mu.Lock()
	km.keys[keyID] = info
	km.mu.Unlock()

	return fmt.Sprintf("fleet_%s_%s.%s", tenantID, keyID, secret), nil
}

// Validate checks an API key and returns the tenant it belongs to
func (km *KeyManager) Validate(apiKey string) (string, error) {
	parts := strings.SplitN(apiKey, "_", 3)
	if len(parts) != 3 || parts[0] != "fleet" {
		return "", ErrInvalidKey
	}
	tenantID := parts[1]

	idAndSecret := strings.SplitN(parts[2], ".", 2)
	if len(idAndSecret) != 2 {
		return "", ErrInvalidKey
	}
	keyID, secret := idAndSecret[0], idAndSecret[1]

	km.mu.RLock()
	info, ok := km.keys[keyID]
	km.mu.RUnlock()
	if !ok {
		return "", ErrKeyNotFound
	}

	if info.TenantID != tenantID {
		return "", ErrWrongTenant
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return "", ErrKeyExpired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(info.Hash), []byte(secret)); err != nil {
		return "", ErrInvalidKey
	}
	return info.TenantID, nil
}

// Revoke removes an API key
func (km *KeyManager) Revoke(keyID string) {
	km.mu.Lock()
	defer km.mu.Unlock()
	delete(km.keys, keyID)
}

// CleanupExpired removes keys past their expiry
func (km *KeyManager) CleanupExpired() {
	km.mu.Lock()
	defer km.mu.Unlock()

	now := time.Now()
	for keyID, info := range km.keys {
		if !info.ExpiresAt.IsZero() && now.After(info.ExpiresAt) {
			delete(km.keys, keyID)
		}
	}
}

// Middleware validates the Authorization bearer key on each request.
// When enabled is false it passes everything through, which keeps
// local development and tests free of key ceremony.
func Middleware(km *KeyManager, enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"unauthorized","message":"Missing Authorization header"}`, http.StatusUnauthorized)
				return
			}
			key := strings.TrimPrefix(authHeader, "Bearer ")

			if _, err := km.Validate(key); err != nil {
				http.Error(w, `{"error":"unauthorized","message":"Invalid API key"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
