package patient

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func validForm() PatientForm {
	return PatientForm{
		Name:    "Asha",
		Age:     "30",
		Gender:  "F",
		Contact: "9990001111",
		KYC:     "ID123",
		Concern: "fever",
	}
}

func TestPatientForm_Input_Valid(t *testing.T) {
	f := validForm()
	f.Name = "  Asha  "
	f.Age = " 30 "

	in, err := f.Input()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if in.Name != "Asha" {
		t.Errorf("Name = %q, want trimmed %q", in.Name, "Asha")
	}
	if in.Age != 30 {
		t.Errorf("Age = %d, want 30", in.Age)
	}
}

func TestPatientForm_Input_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(f *PatientForm)
		field string
		msg   string
	}{
		{"missing age", func(f *PatientForm) { f.Age = "" }, "age", "is required"},
		{"non-numeric age", func(f *PatientForm) { f.Age = "thirty" }, "age", "must be a whole number"},
		{"fractional age", func(f *PatientForm) { f.Age = "30.5" }, "age", "must be a whole number"},
		{"negative age", func(f *PatientForm) { f.Age = "-4" }, "age", "must be between 0 and 150"},
		{"age too high", func(f *PatientForm) { f.Age = "151" }, "age", "must be between 0 and 150"},
		{"blank name", func(f *PatientForm) { f.Name = "   " }, "name", "is required"},
		{"missing concern", func(f *PatientForm) { f.Concern = "" }, "concern", "is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mod(&f)

			_, err := f.Input()

			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if got := ve.For(tt.field); got != tt.msg {
				t.Errorf("For(%q) = %q, want %q", tt.field, got, tt.msg)
			}
		})
	}
}

func TestPatientForm_Input_ReportsEveryField(t *testing.T) {
	_, err := PatientForm{}.Input()

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(ve.Fields) != 6 {
		t.Errorf("expected 6 problems, got %d: %v", len(ve.Fields), ve.Fields)
	}
	if !strings.Contains(ve.Error(), "contact is required") {
		t.Errorf("Error() = %q", ve.Error())
	}
}

func TestPatientForm_BoundaryAges(t *testing.T) {
	for _, age := range []string{"0", "150"} {
		f := validForm()
		f.Age = age
		if _, err := f.Input(); err != nil {
			t.Errorf("age %s: expected valid, got %v", age, err)
		}
	}
}

func TestFormFromRequest(t *testing.T) {
	form := url.Values{
		"name":    {"Asha"},
		"age":     {"30"},
		"gender":  {"F"},
		"contact": {"9990001111"},
		"kyc":     {"ID123"},
		"concern": {"fever"},
	}
	req := httptest.NewRequest(http.MethodPost, "/patient/form", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if got := FormFromRequest(req); got != validForm() {
		t.Errorf("FormFromRequest = %+v, want %+v", got, validForm())
	}
}

func TestFormFromPatient(t *testing.T) {
	p := &Patient{ID: 9, Name: "Asha", Age: 30, Gender: "F", Contact: "9990001111", KYC: "ID123", Concern: "fever"}

	if got := FormFromPatient(p); got != validForm() {
		t.Errorf("FormFromPatient = %+v, want %+v", got, validForm())
	}
}

func TestValidationError_ForNilReceiver(t *testing.T) {
	var ve *ValidationError
	if ve.For("name") != "" {
		t.Error("nil ValidationError should report no problems")
	}
}
