package auth

import (
	"log/slog"
	"net/http"
)

// Notices shown by the login flow.
const (
	MsgLoginSuccess       = "Login Successful!"
	MsgInvalidCredentials = "Invalid username or password."
)

// Renderer renders a named page with data and any pending flash notices.
type Renderer interface {
	Render(w http.ResponseWriter, r *http.Request, status int, page string, data any)
}

// LoginPage is the data passed to the login template.
type LoginPage struct {
	Username string
}

type Handler struct {
	creds    Credentials
	renderer Renderer
	metrics  MetricsRecorder
}

func NewHandler(creds Credentials, renderer Renderer, metrics MetricsRecorder) *Handler {
	return &Handler{creds: creds, renderer: renderer, metrics: metrics}
}

// Home handles GET /
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if Current(r.Context()).IsAuthenticated() {
		http.Redirect(w, r, "/patients", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

// LoginForm handles GET /login
func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "login", LoginPage{})
}

// Login handles POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := Current(ctx)

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if !h.creds.Matches(username, password) {
		slog.Warn("login failed")
		if h.metrics != nil {
			h.metrics.RecordAuthFailure(ctx, "invalid_credentials")
		}
		sess.AddFlash(FlashError, MsgInvalidCredentials)
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	sess.Login()
	sess.AddFlash(FlashSuccess, MsgLoginSuccess)
	slog.Info("doctor logged in", slog.String("session_id", sess.ID()))
	http.Redirect(w, r, "/patients", http.StatusFound)
}

// Logout handles GET /logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	Current(r.Context()).Logout()
	http.Redirect(w, r, "/login", http.StatusFound)
}
