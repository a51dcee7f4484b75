package accounts

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName is the portal's session cookie.
const SessionCookieName = "portal_session"

// SessionManager issues and verifies the signed session tokens carried in
// the portal's cookie.
type SessionManager struct {
	secret []byte
	ttl    time.Duration
}

// NewSessionManager constructs a session manager. An empty secret disables
// sessions (every verify fails), which keeps misconfigured deployments from
// silently accepting forged cookies.
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionManager{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured session lifetime.
func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Issue creates a signed session token for a user id.
func (m *SessionManager) Issue(userID string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("accounts: session secret not configured")
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("accounts: sign session token: %w", err)
	}
	return signed, nil
}

// Verify validates a session token and returns the user id it carries.
func (m *SessionManager) Verify(tokenStr string) (string, error) {
	if len(m.secret) == 0 {
		return "", errors.New("accounts: session secret not configured")
	}
	token, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("accounts: invalid session token: %w", err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", errors.New("accounts: session token missing subject")
	}
	return claims.Subject, nil
}
