package patient

import (
	"time"

	"github.com/google/uuid"
)

// DefaultGender is applied when a record arrives without a gender value.
// Gender always has a value and is never a validation error source.
const DefaultGender = "male"

// Patient maps to the patient table. Visits are owned by the patient and
// cannot outlive it; a patient always has at least one visit because the
// first visit is created atomically with the record.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientCode      string     `db:"patient_code" json:"patient_code"`
	NationalID       string     `db:"national_id" json:"national_id"`
	FullName         string     `db:"full_name" json:"full_name"`
	BirthDate        *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Gender           string     `db:"gender" json:"gender"`
	Address          *string    `db:"address" json:"address,omitempty"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Occupation       *string    `db:"occupation" json:"occupation,omitempty"`
	InsuranceCode    *string    `db:"insurance_code" json:"insurance_code,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	PersonalHistory  string     `db:"personal_history" json:"personal_history"`
	FamilyHistory    string     `db:"family_history" json:"family_history"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	Visits []*Visit `db:"-" json:"visits,omitempty"`
}

// Visit maps to the visit table. A visit is immutable once written; its
// number is assigned from the then-current count of the patient's visits
// and is never recomputed.
type Visit struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	PatientID          uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitNumber        int       `db:"visit_number" json:"visit_number"`
	Timestamp          time.Time `db:"visit_timestamp" json:"timestamp"`
	Symptoms           string    `db:"symptoms" json:"symptoms"`
	DiseaseNameTCM     string    `db:"disease_name_tcm" json:"disease_name_tcm"`
	SyndromeNameTCM    string    `db:"syndrome_name_tcm" json:"syndrome_name_tcm"`
	Prescription       string    `db:"prescription" json:"prescription"`
	AcupunctureTherapy string    `db:"acupuncture_therapy" json:"acupuncture_therapy"`
	LifestyleAdvice    string    `db:"lifestyle_advice" json:"lifestyle_advice"`
	DoctorNotes        string    `db:"doctor_notes" json:"doctor_notes"`
}

// VisitCount returns the number of recorded visits.
func (p *Patient) VisitCount() int {
	return len(p.Visits)
}
