package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Create inserts the patient together with its first visit in one
	// transaction, assigning the patient code, the visit timestamp and
	// visit number 1. Fails with ErrDuplicateNationalID when the national
	// id is already registered.
	Create(ctx context.Context, p *Patient, first *Visit) error

	// AppendVisit inserts a new visit for the patient, assigning the next
	// visit number from the then-current count. Fails with ErrNotFound for
	// an unknown patient.
	AppendVisit(ctx context.Context, patientID uuid.UUID, v *Visit) error

	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByNationalID(ctx context.Context, nationalID string) (*Patient, error)

	// Update rewrites administrative and history fields only; visits are
	// immutable and untouched.
	Update(ctx context.Context, p *Patient) error

	// Delete removes the patient and cascades to all visits. Irreversible.
	Delete(ctx context.Context, id uuid.UUID) error

	// List returns patients (each with its full visit collection) ordered
	// by most recent visit first, plus the total patient count.
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)

	// Search returns all patients matching the free-text query across
	// name, national id, phone, address and visit clinical fields.
	Search(ctx context.Context, query string) ([]*Patient, error)

	// NextPatientCode returns the advisory code the next create is expected
	// to receive. The authoritative code is assigned inside Create.
	NextPatientCode(ctx context.Context) (string, error)
}
