package patient

import (
	"net/http"
	"strconv"
	"strings"
)

// MaxAge is the largest accepted age in years.
const MaxAge = 150

// Patient is a row of the patients table.
type Patient struct {
	ID      int64
	Name    string
	Age     int
	Gender  string
	Contact string
	KYC     string
	Concern string
}

// PatientInput holds the writable fields of a patient.
type PatientInput struct {
	Name    string
	Age     int
	Gender  string
	Contact string
	KYC     string
	Concern string
}

// Validate checks that every text field is non-blank and age is in range.
func (in PatientInput) Validate() error {
	ve := &ValidationError{}
	in.check(ve, true)
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func (in PatientInput) check(ve *ValidationError, checkAge bool) {
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			ve.add(field, "is required")
		}
	}

	required("name", in.Name)
	if checkAge && (in.Age < 0 || in.Age > MaxAge) {
		ve.add("age", "must be between 0 and "+strconv.Itoa(MaxAge))
	}
	required("gender", in.Gender)
	required("contact", in.Contact)
	required("kyc", in.KYC)
	required("concern", in.Concern)
}

// PatientForm is the raw text of a submitted patient form. It is kept as
// strings so a rejected submission can be shown back unchanged.
type PatientForm struct {
	Name    string
	Age     string
	Gender  string
	Contact string
	KYC     string
	Concern string
}

// FormFromRequest reads the patient fields from a parsed POST body.
func FormFromRequest(r *http.Request) PatientForm {
	return PatientForm{
		Name:    r.PostFormValue("name"),
		Age:     r.PostFormValue("age"),
		Gender:  r.PostFormValue("gender"),
		Contact: r.PostFormValue("contact"),
		KYC:     r.PostFormValue("kyc"),
		Concern: r.PostFormValue("concern"),
	}
}

func FormFromPatient(p *Patient) PatientForm {
	return PatientForm{
		Name:    p.Name,
		Age:     strconv.Itoa(p.Age),
		Gender:  p.Gender,
		Contact: p.Contact,
		KYC:     p.KYC,
		Concern: p.Concern,
	}
}

// Input trims the form, parses age and validates the result. The error is
// always a *ValidationError.
func (f PatientForm) Input() (PatientInput, error) {
	in := PatientInput{
		Name:    strings.TrimSpace(f.Name),
		Gender:  strings.TrimSpace(f.Gender),
		Contact: strings.TrimSpace(f.Contact),
		KYC:     strings.TrimSpace(f.KYC),
		Concern: strings.TrimSpace(f.Concern),
	}

	ve := &ValidationError{}
	ageText := strings.TrimSpace(f.Age)
	age, err := strconv.Atoi(ageText)
	switch {
	case ageText == "":
		ve.add("age", "is required")
	case err != nil:
		ve.add("age", "must be a whole number")
	default:
		in.Age = age
	}

	in.check(ve, err == nil)
	if len(ve.Fields) > 0 {
		return in, ve
	}
	return in, nil
}
