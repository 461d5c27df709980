package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

const tokenBytes = 32

// SessionCredentials is what a caller hands to the browser (Token, CSRFToken)
// and what the sessions table keeps (TokenHash, CSRFToken, ExpiresAt).
type SessionCredentials struct {
	Token     string
	TokenHash string
	CSRFToken string
	ExpiresAt time.Time
}

// NewSessionCredentials issues a fresh cookie token and CSRF token valid for ttl.
func NewSessionCredentials(now time.Time, ttl time.Duration) (SessionCredentials, error) {
	token, err := randomToken()
	if err != nil {
		return SessionCredentials{}, fmt.Errorf("session token: %w", err)
	}
	csrf, err := randomToken()
	if err != nil {
		return SessionCredentials{}, fmt.Errorf("csrf token: %w", err)
	}
	return SessionCredentials{
		Token:     token,
		TokenHash: HashToken(token),
		CSRFToken: csrf,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// HashToken is the lookup key stored for a session cookie value.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func randomToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
