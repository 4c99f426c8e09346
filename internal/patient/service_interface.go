package patient

import "context"

// ServiceInterface defines the contract for patient business logic operations
type ServiceInterface interface {
	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatient(ctx context.Context, id int64) (*Patient, error)
	CreatePatient(ctx context.Context, in PatientInput) (*Patient, error)
	UpdatePatient(ctx context.Context, id int64, in PatientInput) (*Patient, error)
	DeletePatient(ctx context.Context, id int64) error
	ExportPatients(ctx context.Context) (*Workbook, error)
}

var _ ServiceInterface = (*Service)(nil)
