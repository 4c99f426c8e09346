package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/XSAM/otelsql"
	_ "github.com/lib/pq"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/clinic-admin/patient-service/internal/config"
)

// Connect opens a pooled PostgreSQL handle with OpenTelemetry instrumentation.
// It does not ping; call Ping to check reachability.
func Connect(cfg config.DatabaseConfig) (*sql.DB, error) {
	attrs := otelsql.WithAttributes(
		semconv.DBSystemPostgreSQL,
		semconv.DBName(cfg.Name),
	)

	db, err := otelsql.Open("postgres", cfg.DSN(), attrs)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := otelsql.RegisterDBStatsMetrics(db, attrs); err != nil {
		slog.Warn("failed to register database stats metrics", slog.Any("error", err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database handle opened", slog.String("dsn", cfg.Redacted()))
	return db, nil
}

// Ping checks that the database answers within timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}
