package patient

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/clinic-admin/patient-service/internal/db"
)

const selectColumns = `SELECT id, name, age, gender, contact, kyc, concern FROM patients`

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Repository talks to the patients table. Every call checks out its own
// connection from the pool and returns it before the call ends.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer conn.Close()

	return fn(conn)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.KYC, &p.Concern); err != nil {
		return nil, err
	}
	return &p, nil
}

func isContactConflict(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == db.ContactUniqueConstraint
}

// ListPatients returns every patient in insertion order.
func (r *Repository) ListPatients(ctx context.Context) ([]Patient, error) {
	patients := []Patient{}

	err := r.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, selectColumns+` ORDER BY id`)
		if err != nil {
			return fmt.Errorf("failed to query patients: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			p, err := scanPatient(rows)
			if err != nil {
				return fmt.Errorf("failed to scan patient: %w", err)
			}
			patients = append(patients, *p)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating patients: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *Repository) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	var patient *Patient

	err := r.withConn(ctx, func(conn *sql.Conn) error {
		p, err := scanPatient(conn.QueryRowContext(ctx, selectColumns+` WHERE id = $1`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPatientNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get patient: %w", err)
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

func (r *Repository) GetPatientByContact(ctx context.Context, contact string) (*Patient, error) {
	var patient *Patient

	err := r.withConn(ctx, func(conn *sql.Conn) error {
		p, err := scanPatient(conn.QueryRowContext(ctx, selectColumns+` WHERE contact = $1`, contact))
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPatientNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get patient by contact: %w", err)
		}
		patient = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return patient, nil
}

// CreatePatient inserts a row and returns it with the assigned id.
func (r *Repository) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	var id int64

	err := r.withConn(ctx, func(conn *sql.Conn) error {
		err := conn.QueryRowContext(ctx, `
			INSERT INTO patients (name, age, gender, contact, kyc, concern)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, in.Name, in.Age, in.Gender, in.Contact, in.KYC, in.Concern).Scan(&id)
		if isContactConflict(err) {
			return ErrDuplicateContact
		}
		if err != nil {
			return fmt.Errorf("failed to insert patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newPatient(id, in), nil
}

// UpdatePatient overwrites every writable field of the row with id.
func (r *Repository) UpdatePatient(ctx context.Context, id int64, in PatientInput) (*Patient, error) {
	err := r.withConn(ctx, func(conn *sql.Conn) error {
		result, err := conn.ExecContext(ctx, `
			UPDATE patients
			SET name = $1, age = $2, gender = $3, contact = $4, kyc = $5, concern = $6
			WHERE id = $7
		`, in.Name, in.Age, in.Gender, in.Contact, in.KYC, in.Concern, id)
		if isContactConflict(err) {
			return ErrDuplicateContact
		}
		if err != nil {
			return fmt.Errorf("failed to update patient: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return ErrPatientNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return newPatient(id, in), nil
}

// DeletePatient removes the row with id. A missing row is not an error.
func (r *Repository) DeletePatient(ctx context.Context, id int64) error {
	return r.withConn(ctx, func(conn *sql.Conn) error {
		if _, err := conn.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete patient: %w", err)
		}
		return nil
	})
}

func newPatient(id int64, in PatientInput) *Patient {
	return &Patient{
		ID:      id,
		Name:    in.Name,
		Age:     in.Age,
		Gender:  in.Gender,
		Contact: in.Contact,
		KYC:     in.KYC,
		Concern: in.Concern,
	}
}
