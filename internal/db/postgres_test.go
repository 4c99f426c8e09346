package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/clinic-admin/patient-service/internal/config"
)

func TestSchema_DeclaresContactConstraint(t *testing.T) {
	if !strings.Contains(Schema, "CREATE TABLE IF NOT EXISTS patients") {
		t.Error("schema does not create the patients table")
	}
	if !strings.Contains(Schema, ContactUniqueConstraint+" UNIQUE (contact)") {
		t.Errorf("schema does not declare %s", ContactUniqueConstraint)
	}
}

func TestConnect_DoesNotDial(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "127.0.0.1",
		Port:     1,
		User:     "clinic",
		Password: "secret",
		Name:     "patient_db",
		SSLMode:  "disable",
	}

	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("expected lazy open to succeed, got %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 25 {
		t.Errorf("MaxOpenConnections = %d, want 25", got)
	}
}

func TestPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing()
	if err := Ping(context.Background(), db, time.Second); err != nil {
		t.Errorf("expected ping to succeed, got %v", err)
	}

	mock.ExpectPing().WillReturnError(context.DeadlineExceeded)
	if err := Ping(context.Background(), db, time.Second); err == nil {
		t.Error("expected ping error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
