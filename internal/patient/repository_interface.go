package patient

import "context"

// RepositoryInterface defines the contract for patient data access
type RepositoryInterface interface {
	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	GetPatientByContact(ctx context.Context, contact string) (*Patient, error)
	CreatePatient(ctx context.Context, in PatientInput) (*Patient, error)
	UpdatePatient(ctx context.Context, id int64, in PatientInput) (*Patient, error)
	DeletePatient(ctx context.Context, id int64) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
