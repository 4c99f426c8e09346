package auth

import (
	"crypto/subtle"
	"time"
)

// Credentials is the single doctor account. It is injected from configuration.
type Credentials struct {
	Username string
	Password string
}

// Matches reports whether username and password equal the configured pair.
// Both fields are always compared.
func (c Credentials) Matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.Password)) == 1
	return userOK && passOK && c.Username != ""
}

// SessionConfig controls how the session cookie is signed and scoped.
type SessionConfig struct {
	Secret       []byte
	MaxAge       time.Duration
	CookieSecure bool
}
