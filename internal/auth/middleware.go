package auth

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type ctxKey string

const sessionKey ctxKey = "clinic_session"

var tracer = otel.Tracer("github.com/clinic-admin/patient-service/auth")

// MetricsRecorder interface for recording auth metrics
type MetricsRecorder interface {
	RecordAuthFailure(ctx context.Context, reason string)
}

// Middleware loads the session into the request context and writes it back
// before the response header goes out if a handler changed it.
func Middleware(store *SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := store.Load(r)
			sw := &sessionWriter{ResponseWriter: w, store: store, sess: sess}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(sw, r.WithContext(ctx))

			sw.commit()
		})
	}
}

// sessionWriter saves the session on the first header write.
type sessionWriter struct {
	http.ResponseWriter
	store     *SessionStore
	sess      *Session
	committed bool
}

func (sw *sessionWriter) commit() {
	if sw.committed {
		return
	}
	sw.committed = true
	if !sw.sess.Modified() {
		return
	}
	if err := sw.store.Save(sw.ResponseWriter, sw.sess); err != nil {
		slog.Error("failed to save session", slog.Any("error", err))
	}
}

func (sw *sessionWriter) WriteHeader(code int) {
	sw.commit()
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *sessionWriter) Write(b []byte) (int, error) {
	sw.commit()
	return sw.ResponseWriter.Write(b)
}

func (sw *sessionWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// RequireLogin redirects anonymous sessions to /login. The wrapped handler
// does not run unless the session is authenticated.
func RequireLogin(metrics MetricsRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracer.Start(r.Context(), "auth.RequireLogin",
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attribute.String("http.target", r.URL.Path)),
			)
			defer span.End()

			sess, ok := FromContext(ctx)
			if !ok || !sess.IsAuthenticated() {
				span.SetStatus(codes.Error, "not logged in")
				span.SetAttributes(attribute.String("error.type", "not_logged_in"))
				if metrics != nil {
					metrics.RecordAuthFailure(ctx, "not_logged_in")
				}
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			span.SetAttributes(attribute.String("session.id", sess.ID()))
			span.SetStatus(codes.Ok, "session authenticated")
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts the Session from context.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*Session)
	return sess, ok && sess != nil
}

// Current returns the request session, or a detached anonymous one when
// Middleware did not run. Changes to a detached session are never persisted.
func Current(ctx context.Context) *Session {
	if sess, ok := FromContext(ctx); ok {
		return sess
	}
	return NewSession()
}
