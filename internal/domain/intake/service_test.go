package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/tcmclinic/clinic/internal/domain/patient"
)

// -- Mock patient repository --

type mockRepo struct {
	patients map[uuid.UUID]*patient.Patient
	writes   int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*patient.Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *patient.Patient, first *patient.Visit) error {
	for _, existing := range m.patients {
		if existing.NationalID == p.NationalID {
			return patient.ErrDuplicateNationalID
		}
	}
	p.ID = uuid.New()
	p.PatientCode = patient.FormatPatientCode(int64(len(m.patients) + 1))
	first.ID = uuid.New()
	first.PatientID = p.ID
	first.VisitNumber = 1
	first.Timestamp = time.Now()
	p.Visits = []*patient.Visit{first}
	m.patients[p.ID] = p
	m.writes++
	return nil
}

func (m *mockRepo) AppendVisit(_ context.Context, patientID uuid.UUID, v *patient.Visit) error {
	p, ok := m.patients[patientID]
	if !ok {
		return patient.ErrNotFound
	}
	v.ID = uuid.New()
	v.PatientID = patientID
	v.VisitNumber = len(p.Visits) + 1
	v.Timestamp = time.Now()
	p.Visits = append(p.Visits, v)
	m.writes++
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByNationalID(_ context.Context, nationalID string) (*patient.Patient, error) {
	for _, p := range m.patients {
		if p.NationalID == nationalID {
			return p, nil
		}
	}
	return nil, patient.ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *patient.Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.patients, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*patient.Patient, int, error) {
	var result []*patient.Patient
	for _, p := range m.patients {
		result = append(result, p)
	}
	return result, len(result), nil
}

func (m *mockRepo) Search(_ context.Context, query string) ([]*patient.Patient, error) {
	return nil, nil
}

func (m *mockRepo) NextPatientCode(_ context.Context) (string, error) {
	return patient.FormatPatientCode(int64(len(m.patients) + 1)), nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(patient.NewService(repo)), repo
}

func TestSubmit_CreateScenario(t *testing.T) {
	svc, repo := newTestService()

	result, err := svc.Submit(context.Background(), validCreateState())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Created {
		t.Error("expected create result")
	}
	if result.Patient.PatientCode != "BN00001" {
		t.Errorf("expected BN00001, got %q", result.Patient.PatientCode)
	}
	if len(repo.patients) != 1 {
		t.Fatalf("expected one patient, got %d", len(repo.patients))
	}
	for _, p := range repo.patients {
		if len(p.Visits) != 1 || p.Visits[0].VisitNumber != 1 {
			t.Errorf("expected one visit numbered 1, got %+v", p.Visits)
		}
		if p.BirthDate == nil || p.BirthDate.Format("2006-01-02") != "1980-05-20" {
			t.Errorf("expected parsed birth date, got %v", p.BirthDate)
		}
	}
}

func TestSubmit_ValidationBlocksStoreCall(t *testing.T) {
	svc, repo := newTestService()

	state := validCreateState()
	state.Admin.FullName = ""
	state.Visit.Symptoms = ""

	_, err := svc.Submit(context.Background(), state)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := verr.Fields["full_name"]; !ok {
		t.Error("expected full_name error")
	}
	if _, ok := verr.Fields["symptoms"]; !ok {
		t.Error("expected symptoms error")
	}
	if repo.writes != 0 {
		t.Error("store must not be called when validation fails")
	}
}

func TestResolveThenSubmit_AppendScenario(t *testing.T) {
	svc, repo := newTestService()

	// Scenario: register the patient first.
	if _, err := svc.Submit(context.Background(), validCreateState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh form resolves the same national id.
	state, err := svc.Resolve(context.Background(), NewFormState(), "012345678901")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Mode != ModeAppendVisit {
		t.Fatalf("expected append mode, got %q", state.Mode)
	}
	if state.Admin.FullName != "Nguyen Van A" {
		t.Errorf("expected prefilled name, got %q", state.Admin.FullName)
	}

	// Submit the second visit.
	state.Visit = completeVisit()
	state.Visit.Symptoms = "headache"
	result, err := svc.Submit(context.Background(), state)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Created {
		t.Error("expected append result")
	}
	if result.Visit.VisitNumber != 2 {
		t.Errorf("expected visit number 2, got %d", result.Visit.VisitNumber)
	}

	p := repo.patients[*state.TargetPatientID]
	if len(p.Visits) != 2 {
		t.Fatalf("expected visits 1 and 2, got %d", len(p.Visits))
	}
	if p.FullName != "Nguyen Van A" || p.NationalID != "012345678901" {
		t.Error("administrative fields must be unchanged after append")
	}
}

func TestResolve_ShortFragmentSkipsLookup(t *testing.T) {
	svc, _ := newTestService()

	state, err := svc.Resolve(context.Background(), NewFormState(), "01234")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Mode != ModeCreate {
		t.Errorf("expected create mode, got %q", state.Mode)
	}
	if state.Admin.NationalID != "01234" {
		t.Errorf("expected typed fragment kept, got %q", state.Admin.NationalID)
	}
}

func TestResolve_MissReturnsCreateMode(t *testing.T) {
	svc, _ := newTestService()

	state, err := svc.Resolve(context.Background(), NewFormState(), "999999999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Mode != ModeCreate || state.TargetPatientID != nil {
		t.Errorf("expected unresolved create state, got %+v", state)
	}
}

func TestSubmit_DuplicateNationalID(t *testing.T) {
	svc, repo := newTestService()

	if _, err := svc.Submit(context.Background(), validCreateState()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A second create with the same id bypassing resolution must fail at
	// the store, not overwrite.
	_, err := svc.Submit(context.Background(), validCreateState())
	if !errors.Is(err, patient.ErrDuplicateNationalID) {
		t.Fatalf("expected ErrDuplicateNationalID, got %v", err)
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected one patient, got %d", len(repo.patients))
	}
}
