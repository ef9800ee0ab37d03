package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest("GET", "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsFor(t, "")
	if p.Limit != DefaultLimit || p.Offset != 0 {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestFromContext_Bounds(t *testing.T) {
	p := paramsFor(t, "limit=5000&offset=-2")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit capped at %d, got %d", MaxLimit, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected negative offset reset, got %d", p.Offset)
	}

	p = paramsFor(t, "limit=abc")
	if p.Limit != DefaultLimit {
		t.Errorf("expected default for garbage limit, got %d", p.Limit)
	}
}

func TestResponse_HasMore(t *testing.T) {
	r := NewResponse(nil, 30, 10, 0)
	if !r.HasMore {
		t.Error("expected has_more true")
	}
	r = NewResponse(nil, 30, 10, 20)
	if r.HasMore {
		t.Error("expected has_more false on last page")
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct{ total, size, want int }{
		{0, 15, 1},
		{1, 15, 1},
		{15, 15, 1},
		{16, 15, 2},
		{30, 15, 2},
		{31, 15, 3},
	}
	for _, tc := range cases {
		if got := PageCount(tc.total, tc.size); got != tc.want {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestClampPage(t *testing.T) {
	if got := ClampPage(0, 16, 15); got != 1 {
		t.Errorf("expected clamp to 1, got %d", got)
	}
	if got := ClampPage(99, 16, 15); got != 2 {
		t.Errorf("expected clamp to 2, got %d", got)
	}
	if got := ClampPage(2, 16, 15); got != 2 {
		t.Errorf("expected 2 unchanged, got %d", got)
	}
	if got := ClampPage(3, 0, 15); got != 1 {
		t.Errorf("expected clamp to 1 for empty set, got %d", got)
	}
}
