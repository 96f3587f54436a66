// Package websession identifies the browser session a verification
// challenge is bound to.
//
// The session id is minted server-side and carried in an HMAC-signed JWT
// cookie. The original mechanism this replaces echoed the user's password
// back into the challenge form as a hidden field; here the only proof the
// client holds is an opaque session reference, and the "credentials
// verified, awaiting second factor" flag lives server-side as the
// challenge binding itself.
package websession

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const DefaultCookieName = "verifySession"

// Config holds session cookie settings.
type Config struct {
	// Secret signs the session cookie. Required.
	Secret     string
	CookieName string
	// TTL bounds the session lifetime; pending challenges die with it.
	TTL time.Duration
	// Secure marks the cookie HTTPS-only. Disable for local development.
	Secure bool
}

// SessionService mints and resolves session identifiers.
type SessionService struct {
	config Config
}

// NewSessionService creates a session service. Zero-value CookieName and
// TTL fall back to DefaultCookieName and 30 minutes.
func NewSessionService(config Config) *SessionService {
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	if config.TTL == 0 {
		config.TTL = 30 * time.Minute
	}
	return &SessionService{config: config}
}

// EnsureSession returns the session id for the request, minting a new
// one and setting the cookie when the request carries none (or an
// invalid/expired one).
func (s *SessionService) EnsureSession(w http.ResponseWriter, r *http.Request) (string, error) {
	if sessionID, ok := s.SessionID(r); ok {
		return sessionID, nil
	}

	sessionID := uuid.New().String()
	token, err := s.signSession(sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	s.setSessionCookie(w, token)
	return sessionID, nil
}

// SessionID extracts and verifies the session id from the request cookie.
func (s *SessionService) SessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return "", false
	}

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sessionID, ok := claims["sid"].(string)
	if !ok || sessionID == "" {
		return "", false
	}

	return sessionID, true
}

// ClearSession expires the session cookie.
func (s *SessionService) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Path:     "/",
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *SessionService) signSession(sessionID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(s.config.TTL).Unix(),
	})
	return token.SignedString([]byte(s.config.Secret))
}

func (s *SessionService) setSessionCookie(w http.ResponseWriter, tokenValue string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Path:     "/",
		Value:    tokenValue,
		Expires:  time.Now().Add(s.config.TTL),
		HttpOnly: true,                 // Make the cookie HttpOnly
		Secure:   s.config.Secure,      // Ensure it's sent over HTTPS
		SameSite: http.SameSiteLaxMode, // Prevent CSRF
	})
}
