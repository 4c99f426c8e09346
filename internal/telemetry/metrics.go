package telemetry

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName names the tracer and meter used across the service.
const InstrumentationName = "github.com/clinic-admin/patient-service"

// Metrics holds the business metrics for the service. HTTP request metrics
// live in the Prometheus collector. A nil *Metrics records nothing.
type Metrics struct {
	PatientOperationsTotal metric.Int64Counter
	AuthFailuresTotal      metric.Int64Counter
	ExportRows             metric.Int64Histogram
}

// InitMetrics creates the instruments on the global meter provider.
func InitMetrics() (*Metrics, error) {
	return NewMetrics(otel.Meter(InstrumentationName))
}

// NewMetrics creates the instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	patientOps, err := meter.Int64Counter(
		"patient_operations_total",
		metric.WithDescription("Total number of patient operations by kind and outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	authFailures, err := meter.Int64Counter(
		"auth_failures_total",
		metric.WithDescription("Total number of authentication failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	exportRows, err := meter.Int64Histogram(
		"patient_export_rows",
		metric.WithDescription("Number of patient rows written per spreadsheet export"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, err
	}

	slog.Debug("custom metrics initialized")

	return &Metrics{
		PatientOperationsTotal: patientOps,
		AuthFailuresTotal:      authFailures,
		ExportRows:             exportRows,
	}, nil
}

// RecordPatientOperation counts a patient operation (create, update, delete,
// list, view, export) with its outcome (success, duplicate, not_found, invalid, error).
func (m *Metrics) RecordPatientOperation(ctx context.Context, operation, outcome string) {
	if m == nil {
		return
	}
	m.PatientOperationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

// RecordAuthFailure records an authentication failure metric
func (m *Metrics) RecordAuthFailure(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordExport(ctx context.Context, rows int) {
	if m == nil {
		return
	}
	m.ExportRows.Record(ctx, int64(rows))
}
