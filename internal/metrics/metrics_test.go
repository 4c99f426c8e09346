package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordRequest_IncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRequest("/patients", http.MethodGet, 200, 10*time.Millisecond)
	c.RecordRequest("/patients", http.MethodGet, 200, 20*time.Millisecond)

	got := testutil.ToFloat64(c.requests.WithLabelValues("/patients", http.MethodGet, "200"))
	if got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}

func TestMiddleware_UsesRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := mux.NewRouter()
	r.Use(c.Middleware)
	r.HandleFunc("/patient/{id:[0-9]+}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusFound)
	}).Methods(http.MethodGet)

	for _, path := range []string{"/patient/1", "/patient/2"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(c.requests.WithLabelValues("/patient/{id:[0-9]+}", http.MethodGet, "302"))
	if got != 2 {
		t.Errorf("requests for template = %v, want 2", got)
	}
}

func TestMiddleware_DefaultStatusIsOK(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	h := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))

	got := testutil.ToFloat64(c.requests.WithLabelValues("unmatched", http.MethodGet, "200"))
	if got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordRequest("/login", http.MethodPost, 302, time.Millisecond)

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), "clinic_http_requests_total") {
		t.Error("response should contain clinic_http_requests_total")
	}
}
