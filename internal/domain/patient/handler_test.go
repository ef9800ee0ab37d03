package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	h := NewHandler(NewService(newMockRepo()))
	e := echo.New()
	return h, e
}

const createBody = `{
	"patient": {
		"full_name": "Nguyen Van A",
		"national_id": "012345678901",
		"personal_history": "none",
		"family_history": "none"
	},
	"first_visit": {
		"symptoms": "insomnia",
		"disease_name_tcm": "bat mien",
		"syndrome_name_tcm": "tam am hu",
		"prescription": "thien vuong bo tam dan",
		"acupuncture_therapy": "HT7, SP6",
		"lifestyle_advice": "no caffeine",
		"doctor_notes": "review in two weeks"
	}
}`

func TestHandler_Create(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(createBody))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var p Patient
	json.Unmarshal(rec.Body.Bytes(), &p)
	if p.PatientCode != "BN00001" {
		t.Errorf("expected BN00001, got %q", p.PatientCode)
	}
	if len(p.Visits) != 1 || p.Visits[0].VisitNumber != 1 {
		t.Errorf("expected one visit numbered 1, got %+v", p.Visits)
	}
}

func TestHandler_Create_Duplicate(t *testing.T) {
	h, e := newTestHandler()

	for i, wantCode := range []int{http.StatusCreated, http.StatusConflict} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/patients", strings.NewReader(createBody))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := h.Create(c)
		if i == 0 {
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			continue
		}
		httpErr, ok := err.(*echo.HTTPError)
		if !ok || httpErr.Code != wantCode {
			t.Fatalf("expected HTTP %d, got %v", wantCode, err)
		}
	}
}

func TestHandler_ResolveNationalID(t *testing.T) {
	h, e := newTestHandler()

	p := testPatient("012345678901")
	if err := h.svc.Create(context.Background(), p, testVisit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/resolve?national_id=012345678901", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ResolveNationalID(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got Patient
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.FullName != "Nguyen Van A" {
		t.Errorf("expected matched patient, got %+v", got)
	}
}

func TestHandler_ResolveNationalID_Miss(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/resolve?national_id=999999999999", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.ResolveNationalID(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_AppendVisit(t *testing.T) {
	h, e := newTestHandler()

	p := testPatient("012345678901")
	if err := h.svc.Create(context.Background(), p, testVisit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := `{
		"symptoms": "headache",
		"disease_name_tcm": "dau dau",
		"syndrome_name_tcm": "can duong thuong cang",
		"prescription": "thien ma cau dang am",
		"acupuncture_therapy": "GB20, LV3",
		"lifestyle_advice": "rest",
		"doctor_notes": "follow up"
	}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(p.ID.String())

	if err := h.AppendVisit(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var v Visit
	json.Unmarshal(rec.Body.Bytes(), &v)
	if v.VisitNumber != 2 {
		t.Errorf("expected visit number 2, got %d", v.VisitNumber)
	}
}

func TestHandler_Delete_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.Delete(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestHandler_Get_InvalidID(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	err := h.Get(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestHandler_NextCode(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/next-code", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.NextCode(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["next_patient_code"] != "BN00001" {
		t.Errorf("expected BN00001, got %q", resp["next_patient_code"])
	}
}
