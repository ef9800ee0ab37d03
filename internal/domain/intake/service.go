package intake

import (
	"context"
	"errors"
	"time"

	"github.com/tcmclinic/clinic/internal/domain/patient"
	"github.com/tcmclinic/clinic/internal/platform/metrics"
)

// Service runs the intake flow: identity resolution on the national ID
// field and validated submission of the completed form.
type Service struct {
	patients *patient.Service
}

func NewService(patients *patient.Service) *Service {
	return &Service{patients: patients}
}

// Resolve looks up the typed national ID and returns the recomputed form
// state. Fragments shorter than MinNationalIDLookupLen never hit storage.
func (s *Service) Resolve(ctx context.Context, prev FormState, typedID string) (FormState, error) {
	if len(typedID) < MinNationalIDLookupLen {
		return Resolve(prev, typedID, nil), nil
	}
	match, err := s.patients.FindByNationalID(ctx, typedID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return Resolve(prev, typedID, nil), nil
		}
		return prev, err
	}
	return Resolve(prev, typedID, match), nil
}

// SubmitResult reports what a successful submission did.
type SubmitResult struct {
	Patient *patient.Patient `json:"patient"`
	Visit   *patient.Visit   `json:"visit"`
	Created bool             `json:"created"`
}

// ValidationError carries the aggregated field error map from a rejected
// submission. The store is never called when validation fails.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "intake form validation failed" }

// Submit validates the form and either creates a patient with their first
// visit or appends a visit to the resolved target.
func (s *Service) Submit(ctx context.Context, state FormState) (*SubmitResult, error) {
	if errs := Validate(state, time.Now()); len(errs) > 0 {
		metrics.IntakeSubmissionsTotal.WithLabelValues(string(state.Mode), "validation_failed").Inc()
		return nil, &ValidationError{Fields: errs}
	}

	visit := visitFromFields(state.Visit)

	if state.Mode == ModeAppendVisit {
		if err := s.patients.AppendVisit(ctx, *state.TargetPatientID, visit); err != nil {
			metrics.IntakeSubmissionsTotal.WithLabelValues(string(state.Mode), "error").Inc()
			return nil, err
		}
		p, err := s.patients.Get(ctx, *state.TargetPatientID)
		if err != nil {
			return nil, err
		}
		metrics.IntakeSubmissionsTotal.WithLabelValues(string(state.Mode), "appended").Inc()
		return &SubmitResult{Patient: p, Visit: visit, Created: false}, nil
	}

	p, err := patientFromAdmin(state.Admin)
	if err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p, visit); err != nil {
		metrics.IntakeSubmissionsTotal.WithLabelValues(string(state.Mode), "error").Inc()
		return nil, err
	}
	metrics.IntakeSubmissionsTotal.WithLabelValues(string(state.Mode), "created").Inc()
	return &SubmitResult{Patient: p, Visit: visit, Created: true}, nil
}

func visitFromFields(v VisitFields) *patient.Visit {
	return &patient.Visit{
		Symptoms:           v.Symptoms,
		DiseaseNameTCM:     v.DiseaseNameTCM,
		SyndromeNameTCM:    v.SyndromeNameTCM,
		Prescription:       v.Prescription,
		AcupunctureTherapy: v.AcupunctureTherapy,
		LifestyleAdvice:    v.LifestyleAdvice,
		DoctorNotes:        v.DoctorNotes,
	}
}

func patientFromAdmin(a AdminFields) (*patient.Patient, error) {
	p := &patient.Patient{
		FullName:        a.FullName,
		NationalID:      a.NationalID,
		Gender:          a.Gender,
		PersonalHistory: a.PersonalHistory,
		FamilyHistory:   a.FamilyHistory,
	}
	if a.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", a.BirthDate)
		if err != nil {
			return nil, err
		}
		p.BirthDate = &bd
	}
	setOpt := func(dst **string, v string) {
		if v != "" {
			*dst = &v
		}
	}
	setOpt(&p.Address, a.Address)
	setOpt(&p.Phone, a.Phone)
	setOpt(&p.Occupation, a.Occupation)
	setOpt(&p.InsuranceCode, a.InsuranceCode)
	setOpt(&p.EmergencyContact, a.EmergencyContact)
	return p, nil
}
