package messaging

import (
	"time"

	"github.com/google/uuid"
)

// ServiceName is stamped on every event this service emits.
const ServiceName = "patient-service"

// Event routing keys
const (
	EventPatientCreated  = "patient.created"
	EventPatientUpdated  = "patient.updated"
	EventPatientDeleted  = "patient.deleted"
	EventPatientExported = "patient.exported"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType   string    `json:"event_type"`
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	ServiceName string    `json:"service_name"`
}

// PatientCreatedEvent is published after a patient row is inserted.
type PatientCreatedEvent struct {
	BaseEvent
	Data PatientData `json:"data"`
}

// PatientUpdatedEvent is published after a patient row is overwritten.
type PatientUpdatedEvent struct {
	BaseEvent
	Data PatientData `json:"data"`
}

// PatientData carries identifying fields only. KYC and concern stay out of the bus.
type PatientData struct {
	PatientID int64  `json:"patient_id"`
	Name      string `json:"name"`
	Contact   string `json:"contact"`
}

type PatientDeletedEvent struct {
	BaseEvent
	Data PatientDeletedData `json:"data"`
}

type PatientDeletedData struct {
	PatientID int64     `json:"patient_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type PatientExportedEvent struct {
	BaseEvent
	Data PatientExportedData `json:"data"`
}

type PatientExportedData struct {
	Rows       int       `json:"rows"`
	ExportedAt time.Time `json:"exported_at"`
}

// NewBaseEvent creates a base event with common fields
func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventType:   eventType,
		EventID:     uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ServiceName: ServiceName,
	}
}
