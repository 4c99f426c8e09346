package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

type mockMetrics struct {
	reasons []string
}

func (m *mockMetrics) RecordAuthFailure(ctx context.Context, reason string) {
	m.reasons = append(m.reasons, reason)
}

func TestRequireLogin_AnonymousRedirects(t *testing.T) {
	metrics := &mockMetrics{}
	called := false
	handler := RequireLogin(metrics)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req = req.WithContext(ContextWithSession(req.Context(), NewSession()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if called {
		t.Error("handler must not run for anonymous session")
	}
	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if len(metrics.reasons) != 1 || metrics.reasons[0] != "not_logged_in" {
		t.Errorf("recorded failures = %v", metrics.reasons)
	}
}

func TestRequireLogin_NoSessionRedirects(t *testing.T) {
	handler := RequireLogin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not run without a session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export", nil))

	if rec.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusFound)
	}
}

func TestRequireLogin_AuthenticatedPasses(t *testing.T) {
	called := false
	handler := RequireLogin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		if _, ok := FromContext(r.Context()); !ok {
			t.Error("expected session in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/patients", nil)
	req = req.WithContext(ContextWithSession(req.Context(), AuthenticatedSession()))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("expected handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestMiddleware_SavesModifiedSessionBeforeHeader(t *testing.T) {
	store := newTestStore()
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Current(r.Context()).AddFlash(FlashError, "boom")
		http.Redirect(w, r, "/login", http.StatusFound)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value == "" {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	flashes := store.Load(req).Flashes()
	if len(flashes) != 1 || flashes[0].Message != "boom" {
		t.Errorf("flashes = %+v", flashes)
	}
}

func TestMiddleware_UnmodifiedSessionSetsNoCookie(t *testing.T) {
	store := newTestStore()
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if len(rec.Result().Cookies()) != 0 {
		t.Errorf("expected no cookie, got %+v", rec.Result().Cookies())
	}
}

func TestMiddleware_SavesWhenHandlerWritesNothing(t *testing.T) {
	store := newTestStore()
	handler := Middleware(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Current(r.Context()).Login()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if len(rec.Result().Cookies()) != 1 {
		t.Fatalf("expected session cookie, got %+v", rec.Result().Cookies())
	}
}

func TestCurrent_WithoutMiddleware(t *testing.T) {
	sess := Current(context.Background())
	if sess == nil || sess.IsAuthenticated() {
		t.Error("expected detached anonymous session")
	}
}
