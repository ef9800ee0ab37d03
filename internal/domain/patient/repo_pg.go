package patient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, patient_code, national_id, full_name, birth_date, gender,
	address, phone, occupation, insurance_code, emergency_contact,
	personal_history, family_history, created_at, updated_at`

const visitCols = `id, patient_id, visit_number, visit_timestamp,
	symptoms, disease_name_tcm, syndrome_name_tcm, prescription,
	acupuncture_therapy, lifestyle_advice, doctor_notes`

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

func isDuplicateNationalID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation &&
		strings.Contains(pgErr.ConstraintName, "national_id")
}

func (r *repoPG) Create(ctx context.Context, p *Patient, first *Visit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer tx.Rollback(ctx)

	p.ID = uuid.New()
	if p.Gender == "" {
		p.Gender = DefaultGender
	}

	var seq int64
	if err := tx.QueryRow(ctx, `SELECT nextval('patient_code_seq')`).Scan(&seq); err != nil {
		return fmt.Errorf("next patient code: %w", err)
	}
	p.PatientCode = FormatPatientCode(seq)

	err = tx.QueryRow(ctx, `
		INSERT INTO patient (
			id, patient_code, national_id, full_name, birth_date, gender,
			address, phone, occupation, insurance_code, emergency_contact,
			personal_history, family_history
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING created_at, updated_at`,
		p.ID, p.PatientCode, p.NationalID, p.FullName, p.BirthDate, p.Gender,
		p.Address, p.Phone, p.Occupation, p.InsuranceCode, p.EmergencyContact,
		p.PersonalHistory, p.FamilyHistory,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isDuplicateNationalID(err) {
			return ErrDuplicateNationalID
		}
		return fmt.Errorf("insert patient: %w", err)
	}

	first.ID = uuid.New()
	first.PatientID = p.ID
	first.VisitNumber = 1
	if err := insertVisit(ctx, tx, first); err != nil {
		return fmt.Errorf("insert first visit: %w", err)
	}
	p.Visits = []*Visit{first}

	return tx.Commit(ctx)
}

func (r *repoPG) AppendVisit(ctx context.Context, patientID uuid.UUID, v *Visit) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the patient row so concurrent appends serialize and the visit
	// number stays contiguous.
	var locked uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM patient WHERE id = $1 FOR UPDATE`, patientID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock patient: %w", err)
	}

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM visit WHERE patient_id = $1`, patientID).Scan(&count); err != nil {
		return fmt.Errorf("count visits: %w", err)
	}

	v.ID = uuid.New()
	v.PatientID = patientID
	v.VisitNumber = count + 1
	if err := insertVisit(ctx, tx, v); err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}

	return tx.Commit(ctx)
}

func insertVisit(ctx context.Context, tx pgx.Tx, v *Visit) error {
	return tx.QueryRow(ctx, `
		INSERT INTO visit (
			id, patient_id, visit_number,
			symptoms, disease_name_tcm, syndrome_name_tcm, prescription,
			acupuncture_therapy, lifestyle_advice, doctor_notes
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING visit_timestamp`,
		v.ID, v.PatientID, v.VisitNumber,
		v.Symptoms, v.DiseaseNameTCM, v.SyndromeNameTCM, v.Prescription,
		v.AcupunctureTherapy, v.LifestyleAdvice, v.DoctorNotes,
	).Scan(&v.Timestamp)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadVisits(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) GetByNationalID(ctx context.Context, nationalID string) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE national_id = $1`, nationalID))
	if err != nil {
		return nil, err
	}
	if err := r.loadVisits(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET
			national_id=$2, full_name=$3, birth_date=$4, gender=$5,
			address=$6, phone=$7, occupation=$8, insurance_code=$9, emergency_contact=$10,
			personal_history=$11, family_history=$12, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.NationalID, p.FullName, p.BirthDate, p.Gender,
		p.Address, p.Phone, p.Occupation, p.InsuranceCode, p.EmergencyContact,
		p.PersonalHistory, p.FamilyHistory,
	)
	if err != nil {
		if isDuplicateNationalID(err) {
			return ErrDuplicateNationalID
		}
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+patientCols+` FROM patient
		ORDER BY (SELECT MAX(v.visit_timestamp) FROM visit v WHERE v.patient_id = patient.id) DESC NULLS LAST
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list patients: %w", err)
	}
	patients, err := collectPatients(rows)
	if err != nil {
		return nil, 0, err
	}

	if err := r.loadVisitsAll(ctx, patients); err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *repoPG) Search(ctx context.Context, query string) ([]*Patient, error) {
	pattern := "%" + query + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT `+patientCols+` FROM patient
		WHERE full_name ILIKE $1 OR national_id ILIKE $1 OR phone ILIKE $1 OR address ILIKE $1
		   OR EXISTS (
			SELECT 1 FROM visit v WHERE v.patient_id = patient.id
			  AND (v.symptoms ILIKE $1 OR v.disease_name_tcm ILIKE $1 OR v.syndrome_name_tcm ILIKE $1)
		   )`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	patients, err := collectPatients(rows)
	if err != nil {
		return nil, err
	}

	if err := r.loadVisitsAll(ctx, patients); err != nil {
		return nil, err
	}
	return patients, nil
}

func (r *repoPG) NextPatientCode(ctx context.Context) (string, error) {
	var last *string
	err := r.pool.QueryRow(ctx, `SELECT MAX(patient_code) FROM patient`).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("max patient code: %w", err)
	}
	if last == nil {
		return FormatPatientCode(1), nil
	}
	n, err := ParsePatientCode(*last)
	if err != nil {
		return "", err
	}
	return FormatPatientCode(n + 1), nil
}

// FormatPatientCode renders the human-readable sequential code, e.g. BN00001.
func FormatPatientCode(n int64) string {
	return fmt.Sprintf("BN%05d", n)
}

// ParsePatientCode extracts the numeric part of a patient code.
func ParsePatientCode(code string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(code, "BN"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed patient code %q: %w", code, err)
	}
	return n, nil
}

func (r *repoPG) loadVisits(ctx context.Context, p *Patient) error {
	rows, err := r.pool.Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE patient_id = $1 ORDER BY visit_number`, p.ID)
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return err
		}
		p.Visits = append(p.Visits, v)
	}
	return rows.Err()
}

func (r *repoPG) loadVisitsAll(ctx context.Context, patients []*Patient) error {
	if len(patients) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*Patient, len(patients))
	ids := make([]uuid.UUID, len(patients))
	for i, p := range patients {
		byID[p.ID] = p
		ids[i] = p.ID
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+visitCols+` FROM visit WHERE patient_id = ANY($1) ORDER BY visit_number`, ids)
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return err
		}
		if p, ok := byID[v.PatientID]; ok {
			p.Visits = append(p.Visits, v)
		}
	}
	return rows.Err()
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID, &p.PatientCode, &p.NationalID, &p.FullName, &p.BirthDate, &p.Gender,
		&p.Address, &p.Phone, &p.Occupation, &p.InsuranceCode, &p.EmergencyContact,
		&p.PersonalHistory, &p.FamilyHistory, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	defer rows.Close()
	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var v Visit
	err := row.Scan(
		&v.ID, &v.PatientID, &v.VisitNumber, &v.Timestamp,
		&v.Symptoms, &v.DiseaseNameTCM, &v.SyndromeNameTCM, &v.Prescription,
		&v.AcupunctureTherapy, &v.LifestyleAdvice, &v.DoctorNotes,
	)
	if err != nil {
		return nil, fmt.Errorf("scan visit: %w", err)
	}
	return &v, nil
}
