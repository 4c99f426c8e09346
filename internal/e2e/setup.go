//go:build integration

package e2e

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/clinic-admin/patient-service/internal/auth"
	httpserver "github.com/clinic-admin/patient-service/internal/http"
	"github.com/clinic-admin/patient-service/internal/metrics"
	"github.com/clinic-admin/patient-service/internal/patient"
	"github.com/clinic-admin/patient-service/internal/testutil"
	"github.com/clinic-admin/patient-service/internal/web"
)

const (
	DoctorUsername = "doctor"
	DoctorPassword = "password123"
)

// TestServer represents a complete E2E test environment
type TestServer struct {
	Server        *httptest.Server
	DB            *sql.DB
	MockPublisher *testutil.MockPublisher
}

// SetupE2ETest creates a complete test environment for E2E testing
// This includes:
// - Real PostgreSQL database
// - Real HTTP server with all routes
// - In-memory RabbitMQ publisher
func SetupE2ETest(t *testing.T) *TestServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mockPublisher := testutil.NewMockPublisher()

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("Failed to create renderer: %v", err)
	}

	repo := patient.NewRepository(db)
	service := patient.NewService(repo, mockPublisher, nil)

	router := httpserver.SetupRouter(httpserver.RouterDeps{
		DB:       db,
		Patients: service,
		Renderer: renderer,
		Sessions: auth.NewSessionStore(auth.SessionConfig{
			Secret: []byte("e2e-session-secret-0123456789"),
			MaxAge: time.Hour,
		}),
		Credentials: auth.Credentials{Username: DoctorUsername, Password: DoctorPassword},
		HTTPMetrics: metrics.NewCollector(prometheus.NewRegistry()),
	})

	server := httptest.NewServer(router)

	return &TestServer{
		Server:        server,
		DB:            db,
		MockPublisher: mockPublisher,
	}
}

// Cleanup cleans up all test resources
func (ts *TestServer) Cleanup(t *testing.T) {
	t.Helper()

	ts.Server.Close()
	testutil.CleanupTestDB(t, ts.DB)
}

// NewClient creates a browser-like client with its own cookie jar.
func (ts *TestServer) NewClient(t *testing.T) *testutil.BrowserClient {
	t.Helper()
	return testutil.NewBrowserClient(t, ts.Server.URL)
}

// LoggedInClient returns a client that has already logged in.
func (ts *TestServer) LoggedInClient(t *testing.T) *testutil.BrowserClient {
	t.Helper()

	client := ts.NewClient(t)
	testutil.AssertRedirect(t, client.Login(t, DoctorUsername, DoctorPassword), "/patients")
	// consume the login notice
	testutil.ReadBody(t, client.GET(t, "/patients"))
	return client
}
