package auth

import "context"

// ContextWithSession adds a session to the context for testing purposes
// This is exported to allow other packages to create test contexts
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// AuthenticatedSession returns a logged-in session for tests.
func AuthenticatedSession() *Session {
	sess := NewSession()
	sess.authenticated = true
	return sess
}
