package patient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/clinic-admin/patient-service/internal/messaging"
	"github.com/clinic-admin/patient-service/internal/telemetry"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	metrics   *telemetry.Metrics
}

// NewService wires the service. publisher and metrics may be nil.
func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, metrics *telemetry.Metrics) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
	}
}

func (s *Service) ListPatients(ctx context.Context) ([]Patient, error) {
	patients, err := s.repo.ListPatients(ctx)
	s.metrics.RecordPatientOperation(ctx, "list", outcome(err))
	if err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	p, err := s.repo.GetPatient(ctx, id)
	s.metrics.RecordPatientOperation(ctx, "view", outcome(err))
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return p, nil
}

// CreatePatient validates in, rejects a contact that is already on file and
// inserts the patient. The store's unique constraint catches the race the
// pre-check cannot.
func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (p *Patient, err error) {
	ctx, span := startSpan(ctx, "patient.CreatePatient")
	defer func() { endSpan(span, err) }()
	defer func() { s.metrics.RecordPatientOperation(ctx, "create", outcome(err)) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetPatientByContact(ctx, in.Contact)
	switch {
	case err == nil && existing != nil:
		return nil, ErrDuplicateContact
	case err != nil && !errors.Is(err, ErrPatientNotFound):
		return nil, fmt.Errorf("failed to check contact: %w", err)
	}

	p, err = s.repo.CreatePatient(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	span.SetAttributes(attribute.Int64("patient.id", p.ID))

	s.publish(ctx, messaging.EventPatientCreated, messaging.PatientCreatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientCreated),
		Data:      patientData(p),
	})
	return p, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id int64, in PatientInput) (p *Patient, err error) {
	ctx, span := startSpan(ctx, "patient.UpdatePatient", attribute.Int64("patient.id", id))
	defer func() { endSpan(span, err) }()
	defer func() { s.metrics.RecordPatientOperation(ctx, "update", outcome(err)) }()

	if err := in.Validate(); err != nil {
		return nil, err
	}

	p, err = s.repo.UpdatePatient(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}

	s.publish(ctx, messaging.EventPatientUpdated, messaging.PatientUpdatedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientUpdated),
		Data:      patientData(p),
	})
	return p, nil
}

// DeletePatient removes the patient. Deleting an id that does not exist succeeds.
func (s *Service) DeletePatient(ctx context.Context, id int64) (err error) {
	ctx, span := startSpan(ctx, "patient.DeletePatient", attribute.Int64("patient.id", id))
	defer func() { endSpan(span, err) }()
	defer func() { s.metrics.RecordPatientOperation(ctx, "delete", outcome(err)) }()

	if err := s.repo.DeletePatient(ctx, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}

	s.publish(ctx, messaging.EventPatientDeleted, messaging.PatientDeletedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientDeleted),
		Data: messaging.PatientDeletedData{
			PatientID: id,
			DeletedAt: time.Now().UTC(),
		},
	})
	return nil
}

// ExportPatients snapshots the whole table into an xlsx workbook.
func (s *Service) ExportPatients(ctx context.Context) (wb *Workbook, err error) {
	ctx, span := startSpan(ctx, "patient.ExportPatients")
	defer func() { endSpan(span, err) }()
	defer func() { s.metrics.RecordPatientOperation(ctx, "export", outcome(err)) }()

	patients, err := s.repo.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list patients for export: %w", err)
	}

	wb, err = BuildWorkbook(patients)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.rows", wb.Rows))
	s.metrics.RecordExport(ctx, wb.Rows)

	s.publish(ctx, messaging.EventPatientExported, messaging.PatientExportedEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventPatientExported),
		Data: messaging.PatientExportedData{
			Rows:       wb.Rows,
			ExportedAt: time.Now().UTC(),
		},
	})
	return wb, nil
}

// publish never fails the caller; the row is already committed.
func (s *Service) publish(ctx context.Context, routingKey string, event interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		slog.Warn("failed to publish event",
			slog.String("routing_key", routingKey),
			slog.Any("error", err),
		)
	}
}

func patientData(p *Patient) messaging.PatientData {
	return messaging.PatientData{
		PatientID: p.ID,
		Name:      p.Name,
		Contact:   p.Contact,
	}
}

func outcome(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &ve):
		return "invalid"
	case errors.Is(err, ErrDuplicateContact):
		return "duplicate"
	case errors.Is(err, ErrPatientNotFound):
		return "not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome(err))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
