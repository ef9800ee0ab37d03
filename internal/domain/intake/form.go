package intake

import (
	"github.com/google/uuid"

	"github.com/tcmclinic/clinic/internal/domain/patient"
)

// Mode discriminates what submitting the intake form will do.
type Mode string

const (
	// ModeCreate registers a new patient together with their first visit.
	ModeCreate Mode = "create"
	// ModeAppendVisit appends a visit to an existing patient's ledger.
	ModeAppendVisit Mode = "append_visit"
)

// MinNationalIDLookupLen is the minimum number of characters a typed
// national ID must have before it triggers a patient lookup. Shorter
// fragments match too many records to be useful.
const MinNationalIDLookupLen = 6

// AdminFields holds the administrative half of the intake form. All
// values are strings as typed; parsing happens at submission.
type AdminFields struct {
	FullName         string `json:"full_name"`
	NationalID       string `json:"national_id"`
	BirthDate        string `json:"birth_date"`
	Gender           string `json:"gender"`
	Address          string `json:"address"`
	Phone            string `json:"phone"`
	Occupation       string `json:"occupation"`
	InsuranceCode    string `json:"insurance_code"`
	EmergencyContact string `json:"emergency_contact"`
	PersonalHistory  string `json:"personal_history"`
	FamilyHistory    string `json:"family_history"`
}

// VisitFields holds the clinical half of the intake form.
type VisitFields struct {
	Symptoms           string `json:"symptoms"`
	DiseaseNameTCM     string `json:"disease_name_tcm"`
	SyndromeNameTCM    string `json:"syndrome_name_tcm"`
	Prescription       string `json:"prescription"`
	AcupunctureTherapy string `json:"acupuncture_therapy"`
	LifestyleAdvice    string `json:"lifestyle_advice"`
	DoctorNotes        string `json:"doctor_notes"`
}

// FormState is the full state of an in-progress intake form. The mode,
// target patient and resolved national ID are maintained exclusively by
// Resolve; callers edit only the field halves.
type FormState struct {
	Mode            Mode       `json:"mode"`
	TargetPatientID *uuid.UUID `json:"target_patient_id,omitempty"`
	// ResolvedNationalID records the national ID the current mode was
	// derived from, so a later edit can be detected as stale.
	ResolvedNationalID string      `json:"resolved_national_id"`
	Admin              AdminFields `json:"admin"`
	Visit              VisitFields `json:"visit"`
}

// NewFormState returns a blank create-mode form.
func NewFormState() FormState {
	return FormState{
		Mode:  ModeCreate,
		Admin: AdminFields{Gender: patient.DefaultGender},
	}
}

// Resolve recomputes the form state after the national ID field changed.
// match is the patient found for typedID, or nil when none was found or
// the fragment was too short to look up. The transform is pure; it never
// touches storage.
//
// On a match the administrative fields are prefilled from the record and
// the form switches to append mode. On a miss the form returns to create
// mode; administrative fields the clerk may have typed are kept, but
// fields that were prefilled from a previous match are cleared so stale
// patient data cannot leak into a new registration.
func Resolve(prev FormState, typedID string, match *patient.Patient) FormState {
	next := prev
	next.Admin.NationalID = typedID
	next.ResolvedNationalID = typedID

	if match != nil {
		next.Mode = ModeAppendVisit
		id := match.ID
		next.TargetPatientID = &id
		next.Admin = adminFromPatient(match)
		next.Admin.NationalID = typedID
		return next
	}

	next.TargetPatientID = nil
	if prev.Mode == ModeAppendVisit {
		// Dropping out of a match: discard the prefilled record fields.
		next.Admin = AdminFields{
			NationalID: typedID,
			Gender:     patient.DefaultGender,
		}
	}
	next.Mode = ModeCreate
	return next
}

func adminFromPatient(p *patient.Patient) AdminFields {
	a := AdminFields{
		FullName:        p.FullName,
		NationalID:      p.NationalID,
		Gender:          p.Gender,
		PersonalHistory: p.PersonalHistory,
		FamilyHistory:   p.FamilyHistory,
	}
	if p.BirthDate != nil {
		a.BirthDate = p.BirthDate.Format("2006-01-02")
	}
	if p.Address != nil {
		a.Address = *p.Address
	}
	if p.Phone != nil {
		a.Phone = *p.Phone
	}
	if p.Occupation != nil {
		a.Occupation = *p.Occupation
	}
	if p.InsuranceCode != nil {
		a.InsuranceCode = *p.InsuranceCode
	}
	if p.EmergencyContact != nil {
		a.EmergencyContact = *p.EmergencyContact
	}
	return a
}
