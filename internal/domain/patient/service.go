package patient

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new patient together with its first visit. The store
// assigns id, patient code, visit number 1 and the visit timestamp.
func (s *Service) Create(ctx context.Context, p *Patient, first *Visit) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.NationalID == "" {
		return fmt.Errorf("national_id is required")
	}
	if p.PersonalHistory == "" || p.FamilyHistory == "" {
		return fmt.Errorf("personal_history and family_history are required")
	}
	if first == nil {
		return fmt.Errorf("first visit is required")
	}
	if err := validateVisit(first); err != nil {
		return err
	}
	if p.Gender == "" {
		p.Gender = DefaultGender
	}
	return s.repo.Create(ctx, p, first)
}

// AppendVisit adds one immutable visit to an existing patient. It never
// touches administrative fields or prior visits.
func (s *Service) AppendVisit(ctx context.Context, patientID uuid.UUID, v *Visit) error {
	if patientID == uuid.Nil {
		return fmt.Errorf("patient id is required")
	}
	if err := validateVisit(v); err != nil {
		return err
	}
	return s.repo.AppendVisit(ctx, patientID, v)
}

func validateVisit(v *Visit) error {
	// Strict policy: every visit carries a complete clinical record.
	switch "" {
	case v.Symptoms:
		return fmt.Errorf("symptoms is required")
	case v.DiseaseNameTCM:
		return fmt.Errorf("disease_name_tcm is required")
	case v.SyndromeNameTCM:
		return fmt.Errorf("syndrome_name_tcm is required")
	case v.Prescription:
		return fmt.Errorf("prescription is required")
	case v.AcupunctureTherapy:
		return fmt.Errorf("acupuncture_therapy is required")
	case v.LifestyleAdvice:
		return fmt.Errorf("lifestyle_advice is required")
	case v.DoctorNotes:
		return fmt.Errorf("doctor_notes is required")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// FindByNationalID looks up the patient holding the given national id.
// Returns ErrNotFound when no patient matches.
func (s *Service) FindByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	if nationalID == "" {
		return nil, ErrNotFound
	}
	return s.repo.GetByNationalID(ctx, nationalID)
}

// Update rewrites administrative and history fields. The national id may
// change here (explicit edit), never via the visit-add flow.
func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if p.NationalID == "" {
		return fmt.Errorf("national_id is required")
	}
	if p.Gender == "" {
		p.Gender = DefaultGender
	}
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string) ([]*Patient, error) {
	return s.repo.Search(ctx, query)
}

// NextPatientCode returns the advisory code shown on the intake form before
// submission; the authoritative code is assigned by Create.
func (s *Service) NextPatientCode(ctx context.Context) (string, error) {
	return s.repo.NextPatientCode(ctx)
}
