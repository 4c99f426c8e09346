package patient

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/clinic-admin/patient-service/internal/auth"
)

// Notices shown after patient operations.
const (
	MsgPatientAdded     = "Patient added successfully!"
	MsgPatientUpdated   = "Patient updated successfully!"
	MsgPatientDeleted   = "Patient deleted successfully!"
	MsgPatientNotFound  = "Patient not found."
	MsgDuplicateContact = "A patient with this contact already exists."
	MsgStoreFailure     = "Database connection failed."
)

// ListPage is the data for the patient_list template.
type ListPage struct {
	Patients []Patient
}

// FormPage is the data for the patient_form template. ID is zero when creating.
type FormPage struct {
	ID     int64
	Form   PatientForm
	Errors *ValidationError
}

func (p FormPage) IsEdit() bool { return p.ID != 0 }

type Handler struct {
	service  ServiceInterface
	renderer auth.Renderer
}

func NewHandler(service ServiceInterface, renderer auth.Renderer) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
	}
}

// ListPatients handles GET /patients. A store failure renders an empty list
// with the notice instead of redirecting to itself.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	patients, err := h.service.ListPatients(r.Context())
	if err != nil {
		slog.Error("failed to list patients", slog.Any("error", err))
		auth.Current(r.Context()).AddFlash(auth.FlashError, MsgStoreFailure)
		h.renderer.Render(w, r, storeFailureStatus(err), "patient_list", ListPage{Patients: []Patient{}})
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "patient_list", ListPage{Patients: patients})
}

// ViewPatient handles GET /patient/{id}
func (h *Handler) ViewPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		h.redirectWithNotice(w, r, MsgPatientNotFound)
		return
	}

	p, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "patient_view", p)
}

// NewPatientForm handles GET /patient/form
func (h *Handler) NewPatientForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, r, http.StatusOK, "patient_form", FormPage{})
}

// CreatePatient handles POST /patient/form
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	form := FormFromRequest(r)
	in, err := form.Input()
	if err != nil {
		h.renderForm(w, r, FormPage{Form: form}, err)
		return
	}

	p, err := h.service.CreatePatient(r.Context(), in)
	if err != nil {
		h.renderForm(w, r, FormPage{Form: form}, err)
		return
	}

	slog.Info("patient created", slog.Int64("patient_id", p.ID))
	auth.Current(r.Context()).AddFlash(auth.FlashSuccess, MsgPatientAdded)
	http.Redirect(w, r, "/patients", http.StatusFound)
}

// EditPatientForm handles GET /patient/form/{id}
func (h *Handler) EditPatientForm(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		h.redirectWithNotice(w, r, MsgPatientNotFound)
		return
	}

	p, err := h.service.GetPatient(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	h.renderer.Render(w, r, http.StatusOK, "patient_form", FormPage{ID: p.ID, Form: FormFromPatient(p)})
}

// UpdatePatient handles POST /patient/form/{id}
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		h.redirectWithNotice(w, r, MsgPatientNotFound)
		return
	}

	// The row must exist before the submitted values are looked at.
	if _, err := h.service.GetPatient(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	form := FormFromRequest(r)
	in, err := form.Input()
	if err != nil {
		h.renderForm(w, r, FormPage{ID: id, Form: form}, err)
		return
	}

	if _, err := h.service.UpdatePatient(r.Context(), id, in); err != nil {
		h.renderForm(w, r, FormPage{ID: id, Form: form}, err)
		return
	}

	slog.Info("patient updated", slog.Int64("patient_id", id))
	auth.Current(r.Context()).AddFlash(auth.FlashSuccess, MsgPatientUpdated)
	http.Redirect(w, r, "/patients", http.StatusFound)
}

// DeletePatient handles GET and POST /patient/delete/{id}
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, ok := patientID(r)
	if !ok {
		h.redirectWithNotice(w, r, MsgPatientNotFound)
		return
	}

	if err := h.service.DeletePatient(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}

	slog.Info("patient deleted", slog.Int64("patient_id", id))
	auth.Current(r.Context()).AddFlash(auth.FlashSuccess, MsgPatientDeleted)
	http.Redirect(w, r, "/patients", http.StatusFound)
}

// ExportPatients handles GET /export
func (h *Handler) ExportPatients(w http.ResponseWriter, r *http.Request) {
	wb, err := h.service.ExportPatients(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", ExportContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFilename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(wb.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(wb.Data); err != nil {
		slog.Warn("failed to write export", slog.Any("error", err))
	}
}

// renderForm shows the form again with the submitted values. Validation
// problems are 400, a duplicate contact is 200 with a notice. Anything else
// goes back to the list.
func (h *Handler) renderForm(w http.ResponseWriter, r *http.Request, page FormPage, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		page.Errors = ve
		h.renderer.Render(w, r, http.StatusBadRequest, "patient_form", page)
	case errors.Is(err, ErrDuplicateContact):
		auth.Current(r.Context()).AddFlash(auth.FlashError, MsgDuplicateContact)
		h.renderer.Render(w, r, http.StatusOK, "patient_form", page)
	default:
		h.handleError(w, r, err)
	}
}

// handleError turns a service error into a notice and a redirect to the list.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrPatientNotFound) {
		h.redirectWithNotice(w, r, MsgPatientNotFound)
		return
	}

	slog.Error("patient operation failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	h.redirectWithNotice(w, r, MsgStoreFailure)
}

func (h *Handler) redirectWithNotice(w http.ResponseWriter, r *http.Request, message string) {
	auth.Current(r.Context()).AddFlash(auth.FlashError, message)
	http.Redirect(w, r, "/patients", http.StatusFound)
}

// patientID parses the {id} route variable. The route pattern only admits
// digits, so failure here means the value overflows int64.
func patientID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func storeFailureStatus(err error) int {
	if errors.Is(err, ErrStoreUnavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
