package records

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tcmclinic/clinic/internal/domain/patient"
	"github.com/tcmclinic/clinic/pkg/pagination"
)

// PageSize is the fixed number of records per listing page.
const PageSize = 15

// Summary is one row of the records listing: administrative fields plus
// a projection of the patient's most recent visit.
type Summary struct {
	ID          uuid.UUID  `json:"id"`
	PatientCode string     `json:"patient_code"`
	NationalID  string     `json:"national_id"`
	FullName    string     `json:"full_name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Gender      string     `json:"gender"`
	Phone       *string    `json:"phone,omitempty"`
	Address     *string    `json:"address,omitempty"`
	VisitCount  int        `json:"visit_count"`

	LatestSymptoms  string     `json:"latest_symptoms"`
	LatestDisease   string     `json:"latest_disease"`
	LatestSyndrome  string     `json:"latest_syndrome"`
	LatestVisitTime *time.Time `json:"latest_visit_time,omitempty"`
}

// Page is one page of the records listing.
type Page struct {
	Items      []Summary `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
	Query      string    `json:"query,omitempty"`
}

// Detail is the full record view for one patient: the patient, the visit
// history in display order and a flag raised when the stored visit
// numbering disagrees with the ledger ordering.
type Detail struct {
	Patient       *patient.Patient       `json:"patient"`
	History       []patient.HistoryEntry `json:"history"`
	LedgerCorrupt bool                   `json:"ledger_corrupt"`
}

// Service assembles the search, listing and detail views over the
// patient store.
type Service struct {
	patients *patient.Service
	log      zerolog.Logger
}

func NewService(patients *patient.Service, log zerolog.Logger) *Service {
	return &Service{patients: patients, log: log}
}

// Browse returns one page of the listing. A blank query lists every
// patient ordered by most recent visit; a non-blank query searches and
// paginates the filtered results. Out-of-range pages are clamped.
func (s *Service) Browse(ctx context.Context, query string, page int) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.browseAll(ctx, page)
	}
	return s.browseSearch(ctx, query, page)
}

func (s *Service) browseAll(ctx context.Context, page int) (*Page, error) {
	// Clamping needs the total before the page query can run.
	_, total, err := s.patients.List(ctx, 1, 0)
	if err != nil {
		return nil, err
	}
	page = pagination.ClampPage(page, total, PageSize)

	patients, total, err := s.patients.List(ctx, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, err
	}
	return s.buildPage(patients, total, page, ""), nil
}

func (s *Service) browseSearch(ctx context.Context, query string, page int) (*Page, error) {
	matches, err := s.patients.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	total := len(matches)
	page = pagination.ClampPage(page, total, PageSize)

	start := (page - 1) * PageSize
	end := start + PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return s.buildPage(matches[start:end], total, page, query), nil
}

func (s *Service) buildPage(patients []*patient.Patient, total, page int, query string) *Page {
	items := make([]Summary, 0, len(patients))
	for _, p := range patients {
		items = append(items, summarize(p))
	}
	return &Page{
		Items:      items,
		Page:       page,
		PageSize:   PageSize,
		Total:      total,
		TotalPages: pagination.PageCount(total, PageSize),
		Query:      query,
	}
}

func summarize(p *patient.Patient) Summary {
	s := Summary{
		ID:          p.ID,
		PatientCode: p.PatientCode,
		NationalID:  p.NationalID,
		FullName:    p.FullName,
		BirthDate:   p.BirthDate,
		Gender:      p.Gender,
		Phone:       p.Phone,
		Address:     p.Address,
		VisitCount:  p.VisitCount(),
	}
	if latest := patient.Latest(p.Visits); latest != nil {
		s.LatestSymptoms = latest.Symptoms
		s.LatestDisease = latest.DiseaseNameTCM
		s.LatestSyndrome = latest.SyndromeNameTCM
		t := latest.Timestamp
		s.LatestVisitTime = &t
	}
	return s
}

// Detail fetches one patient's full record. A numbering mismatch in the
// stored ledger is logged and flagged but does not fail the request.
func (s *Service) Detail(ctx context.Context, id uuid.UUID) (*Detail, error) {
	p, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := patient.History(p.Visits)
	corrupt := false
	if err != nil {
		if !errors.Is(err, patient.ErrLedgerCorrupt) {
			return nil, err
		}
		corrupt = true
		s.log.Warn().
			Str("patient_id", id.String()).
			Str("patient_code", p.PatientCode).
			Err(err).
			Msg("visit ledger numbering mismatch")
	}
	return &Detail{Patient: p, History: history, LedgerCorrupt: corrupt}, nil
}
