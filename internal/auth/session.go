package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// CookieName is the name of the signed session cookie.
const CookieName = "clinic_session"

// Flash categories
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

var ErrInvalidSession = errors.New("invalid session token")

// Flash is a one-time notice shown on the next rendered page.
type Flash struct {
	Category string `json:"c"`
	Message  string `json:"m"`
}

// Session is the per-request view of the browser session. It is created by
// Middleware and carried in the request context.
type Session struct {
	id            string
	authenticated bool
	flashes       []Flash
	modified      bool
}

// NewSession returns an anonymous session with no notices.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

func (s *Session) ID() string { return s.id }

func (s *Session) IsAuthenticated() bool { return s.authenticated }

// Login marks the session authenticated and rotates its ID.
func (s *Session) Login() {
	s.id = uuid.NewString()
	s.authenticated = true
	s.modified = true
}

func (s *Session) Logout() {
	s.authenticated = false
	s.modified = true
}

// AddFlash queues a notice for the next rendered page. A notice identical to
// one already pending is dropped.
func (s *Session) AddFlash(category, message string) {
	for _, f := range s.flashes {
		if f.Category == category && f.Message == message {
			return
		}
	}
	s.flashes = append(s.flashes, Flash{Category: category, Message: message})
	s.modified = true
}

// Flashes returns the pending notices and removes them from the session.
func (s *Session) Flashes() []Flash {
	if len(s.flashes) == 0 {
		return nil
	}
	out := s.flashes
	s.flashes = nil
	s.modified = true
	return out
}

// Modified reports whether the session must be written back to the client.
func (s *Session) Modified() bool { return s.modified }

func (s *Session) empty() bool {
	return !s.authenticated && len(s.flashes) == 0
}

type sessionClaims struct {
	jwt.RegisteredClaims
	LoggedIn bool    `json:"logged_in,omitempty"`
	Flashes  []Flash `json:"flashes,omitempty"`
}

// SessionStore persists sessions in an HS256-signed cookie.
type SessionStore struct {
	cfg SessionConfig
}

func NewSessionStore(cfg SessionConfig) *SessionStore {
	return &SessionStore{cfg: cfg}
}

// Load reads the session cookie. A missing, tampered or expired cookie
// yields a fresh anonymous session.
func (s *SessionStore) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return NewSession()
	}

	sess, err := s.decode(cookie.Value)
	if err != nil {
		slog.Debug("discarding session cookie", slog.Any("error", err))
		fresh := NewSession()
		// clear the bad cookie on the next write
		fresh.modified = true
		return fresh
	}
	return sess
}

// Save writes sess to the response. An empty session clears the cookie.
// It must be called before the response header is written.
func (s *SessionStore) Save(w http.ResponseWriter, sess *Session) error {
	if sess.empty() {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		sess.modified = false
		return nil
	}

	token, err := s.encode(sess, time.Now())
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	sess.modified = false
	return nil
}

func (s *SessionStore) encode(sess *Session, now time.Time) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.MaxAge)),
		},
		LoggedIn: sess.authenticated,
		Flashes:  sess.flashes,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}
	return token, nil
}

func (s *SessionStore) decode(tokenString string) (*Session, error) {
	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// enforce HS256
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidSession
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.ExpiresAt == nil || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	return &Session{
		id:            claims.ID,
		authenticated: claims.LoggedIn,
		flashes:       claims.Flashes,
	}, nil
}
