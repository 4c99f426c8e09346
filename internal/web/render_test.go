package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clinic-admin/patient-service/internal/auth"
	"github.com/clinic-admin/patient-service/internal/patient"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	rd, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return rd
}

func requestWithSession(sess *auth.Session) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	return req.WithContext(auth.ContextWithSession(req.Context(), sess))
}

func TestNewRenderer_ParsesAllPages(t *testing.T) {
	rd := newTestRenderer(t)

	for _, page := range []string{"login", "patient_list", "patient_view", "patient_form"} {
		if _, ok := rd.pages[page]; !ok {
			t.Errorf("page %q not registered", page)
		}
	}
	if _, ok := rd.pages["layout"]; ok {
		t.Error("layout must not be registered as a page")
	}
}

func TestRender_FlashesShownOnce(t *testing.T) {
	rd := newTestRenderer(t)
	sess := auth.NewSession()
	sess.AddFlash(auth.FlashError, "Invalid username or password.")
	req := requestWithSession(sess)

	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, "login", auth.LoginPage{})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Invalid username or password.") {
		t.Error("expected flash in page")
	}

	rec = httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, "login", auth.LoginPage{})
	if strings.Contains(rec.Body.String(), "Invalid username or password.") {
		t.Error("flash rendered twice")
	}
}

func TestRender_PatientListEscapesValues(t *testing.T) {
	rd := newTestRenderer(t)
	req := requestWithSession(auth.AuthenticatedSession())

	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, "patient_list", patient.ListPage{
		Patients: []patient.Patient{{ID: 7, Name: "<script>x</script>", Age: 30, Gender: "F", Contact: "111"}},
	})

	body := rec.Body.String()
	if strings.Contains(body, "<script>x</script>") {
		t.Error("patient name was not escaped")
	}
	if !strings.Contains(body, `href="/patient/7"`) {
		t.Error("expected link to patient detail")
	}
	if !strings.Contains(body, `href="/logout"`) {
		t.Error("expected navigation for authenticated session")
	}
}

func TestRender_PatientListDegradedStatus(t *testing.T) {
	rd := newTestRenderer(t)
	req := requestWithSession(auth.AuthenticatedSession())

	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusServiceUnavailable, "patient_list", patient.ListPage{Patients: []patient.Patient{}})

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No patients yet.") {
		t.Error("expected empty table message")
	}
}

func TestRender_PatientView(t *testing.T) {
	rd := newTestRenderer(t)
	req := requestWithSession(auth.AuthenticatedSession())

	rec := httptest.NewRecorder()
	rd.Render(rec, req, http.StatusOK, "patient_view", &patient.Patient{
		ID: 3, Name: "Asha", Age: 30, Gender: "F", Contact: "9990001111", KYC: "ID123", Concern: "fever",
	})

	body := rec.Body.String()
	for _, want := range []string{"Asha", "9990001111", "ID123", "fever", `href="/patient/form/3"`} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
}

func TestRender_PatientForm(t *testing.T) {
	rd := newTestRenderer(t)
	req := requestWithSession(auth.AuthenticatedSession())

	t.Run("Create with errors", func(t *testing.T) {
		form := patient.PatientForm{Name: "Asha", Age: "abc"}
		_, err := form.Input()
		ve, ok := err.(*patient.ValidationError)
		if !ok {
			t.Fatalf("expected *ValidationError, got %T", err)
		}

		rec := httptest.NewRecorder()
		rd.Render(rec, req, http.StatusBadRequest, "patient_form", patient.FormPage{Form: form, Errors: ve})

		body := rec.Body.String()
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
		if !strings.Contains(body, `action="/patient/form"`) {
			t.Error("expected create action")
		}
		if !strings.Contains(body, `value="abc"`) {
			t.Error("expected submitted age to be repopulated")
		}
		if !strings.Contains(body, "must be a whole number") {
			t.Error("expected age error message")
		}
	})

	t.Run("Edit", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rd.Render(rec, req, http.StatusOK, "patient_form", patient.FormPage{ID: 4, Form: patient.PatientForm{Name: "Ravi"}})

		body := rec.Body.String()
		if !strings.Contains(body, `action="/patient/form/4"`) {
			t.Error("expected edit action")
		}
		if !strings.Contains(body, `value="Ravi"`) {
			t.Error("expected stored name")
		}
	})
}

func TestRender_UnknownPage(t *testing.T) {
	rd := newTestRenderer(t)

	rec := httptest.NewRecorder()
	rd.Render(rec, requestWithSession(auth.NewSession()), http.StatusOK, "missing", nil)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRender_TemplateErrorIs500(t *testing.T) {
	rd := newTestRenderer(t)

	// patient_view expects a patient; a string has no Name field.
	rec := httptest.NewRecorder()
	rd.Render(rec, requestWithSession(auth.NewSession()), http.StatusOK, "patient_view", "not a patient")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
