package http

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"

	"github.com/clinic-admin/patient-service/internal/auth"
	"github.com/clinic-admin/patient-service/internal/db"
	"github.com/clinic-admin/patient-service/internal/metrics"
	"github.com/clinic-admin/patient-service/internal/patient"
	"github.com/clinic-admin/patient-service/internal/telemetry"
)

const serviceName = "patient-service"

const healthPingTimeout = 2 * time.Second

// RouterDeps collects what SetupRouter wires together. DB is only used by the
// health check. HTTPMetrics and Gatherer may be nil.
type RouterDeps struct {
	DB          *sql.DB
	Patients    patient.ServiceInterface
	Renderer    auth.Renderer
	Sessions    *auth.SessionStore
	Credentials auth.Credentials
	Metrics     *telemetry.Metrics
	HTTPMetrics *metrics.Collector
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// SetupRouter initializes all routes for the application
func SetupRouter(deps RouterDeps) *mux.Router {
	authHandler := auth.NewHandler(deps.Credentials, deps.Renderer, deps.Metrics)
	patientHandler := patient.NewHandler(deps.Patients, deps.Renderer)

	r := mux.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(otelmux.Middleware(serviceName))
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(SecurityHeadersMiddleware)
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Middleware)
	}

	// Public endpoints, no session
	r.HandleFunc("/health", healthHandler(deps.DB)).Methods("GET")
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer)).Methods("GET")
	}

	session := auth.Middleware(deps.Sessions)
	guard := func(h http.HandlerFunc) http.Handler {
		return session(auth.RequireLogin(deps.Metrics)(h))
	}

	// Login flow
	r.Handle("/", session(http.HandlerFunc(authHandler.Home))).Methods("GET")
	r.Handle("/login", session(http.HandlerFunc(authHandler.LoginForm))).Methods("GET")
	r.Handle("/login", session(http.HandlerFunc(authHandler.Login))).Methods("POST")
	r.Handle("/logout", session(http.HandlerFunc(authHandler.Logout))).Methods("GET")

	// Patient routes (logged-in doctor only)
	r.Handle("/patients", guard(patientHandler.ListPatients)).Methods("GET")
	r.Handle("/patient/form", guard(patientHandler.NewPatientForm)).Methods("GET")
	r.Handle("/patient/form", guard(patientHandler.CreatePatient)).Methods("POST")
	r.Handle("/patient/form/{id:[0-9]+}", guard(patientHandler.EditPatientForm)).Methods("GET")
	r.Handle("/patient/form/{id:[0-9]+}", guard(patientHandler.UpdatePatient)).Methods("POST")
	r.Handle("/patient/delete/{id:[0-9]+}", guard(patientHandler.DeletePatient)).Methods("GET", "POST")
	r.Handle("/patient/{id:[0-9]+}", guard(patientHandler.ViewPatient)).Methods("GET")
	r.Handle("/export", guard(patientHandler.ExportPatients)).Methods("GET")

	return r
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database"`
}

// healthHandler reports process liveness and whether the database answers.
func healthHandler(conn *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Service: serviceName, Database: "ok"}
		status := http.StatusOK

		if conn == nil {
			resp.Database = "not_configured"
		} else if err := db.Ping(r.Context(), conn, healthPingTimeout); err != nil {
			slog.Warn("health check database ping failed", slog.Any("error", err))
			resp.Status = "degraded"
			resp.Database = "unavailable"
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Warn("failed to write health response", slog.Any("error", err))
		}
	}
}
