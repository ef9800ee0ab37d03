package intake

import "time"

// Field error messages shown on the intake form.
const (
	msgRequired        = "field is required"
	msgBirthFuture     = "birth date cannot be in the future"
	msgBirthFormat     = "birth date must be YYYY-MM-DD"
	msgStaleResolution = "national id changed since the last lookup, wait for resolution"
	msgNoTarget        = "no target patient resolved for visit append"
)

// Validate checks a form state and returns a map from field name to
// error message. An empty map means the form may be submitted.
// Validation is exhaustive; every invalid field is reported in one pass.
func Validate(state FormState, now time.Time) map[string]string {
	errs := make(map[string]string)

	// Clinical fields are required in both modes.
	requireVisit(errs, state.Visit)

	if state.Mode == ModeAppendVisit {
		if state.TargetPatientID == nil {
			errs["national_id"] = msgNoTarget
		}
	} else {
		requireAdmin(errs, state.Admin, now)
	}

	// A submit racing ahead of an in-flight lookup must not pick a mode
	// derived from a stale national ID.
	if len(state.Admin.NationalID) >= MinNationalIDLookupLen &&
		state.ResolvedNationalID != state.Admin.NationalID {
		errs["national_id"] = msgStaleResolution
	}

	return errs
}

func requireVisit(errs map[string]string, v VisitFields) {
	check := func(field, value string) {
		if value == "" {
			errs[field] = msgRequired
		}
	}
	check("symptoms", v.Symptoms)
	check("disease_name_tcm", v.DiseaseNameTCM)
	check("syndrome_name_tcm", v.SyndromeNameTCM)
	check("prescription", v.Prescription)
	check("acupuncture_therapy", v.AcupunctureTherapy)
	check("lifestyle_advice", v.LifestyleAdvice)
	check("doctor_notes", v.DoctorNotes)
}

func requireAdmin(errs map[string]string, a AdminFields, now time.Time) {
	check := func(field, value string) {
		if value == "" {
			errs[field] = msgRequired
		}
	}
	check("full_name", a.FullName)
	check("national_id", a.NationalID)
	check("phone", a.Phone)
	check("occupation", a.Occupation)
	check("insurance_code", a.InsuranceCode)
	check("address", a.Address)
	check("emergency_contact", a.EmergencyContact)
	check("personal_history", a.PersonalHistory)
	check("family_history", a.FamilyHistory)

	// Gender always carries a value and never errors.

	if a.BirthDate == "" {
		errs["birth_date"] = msgRequired
	} else if bd, err := time.Parse("2006-01-02", a.BirthDate); err != nil {
		errs["birth_date"] = msgBirthFormat
	} else if bd.After(now) {
		errs["birth_date"] = msgBirthFuture
	}
}
