package patient

import (
	"errors"
	"strings"
)

var (
	ErrPatientNotFound  = errors.New("patient not found")
	ErrDuplicateContact = errors.New("a patient with this contact already exists")
	ErrStoreUnavailable = errors.New("patient store unavailable")
)

// FieldError is a problem with one submitted form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every problem found in a patient submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+" "+f.Message)
	}
	return "invalid patient: " + strings.Join(parts, "; ")
}

// For returns the message for field, or "" when the field is fine.
// Safe to call on a nil receiver from templates.
func (e *ValidationError) For(field string) string {
	if e == nil {
		return ""
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}
