package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

func TestParsePlaceListOptions(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions", nil)
	q := req.URL.Query()
	q.Set("sort", "cost_asc")
	q.Set("limit", "25")
	q.Set("skip", "50")
	q.Set("tags", "museum, viewpoint ,free")
	q.Set("max_cost", "40")
	q.Set("min_rating", "3.5")
	q.Set("open_now", "true")
	q.Set("current_time", "2026-03-14T10:30:00Z")
	q.Set("lat", "13.7563")
	q.Set("lng", "100.5018")
	q.Set("max_distance", "2500")
	req.URL.RawQuery = q.Encode()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	opts, err := parsePlaceListOptions(c)
	if err != nil {
		t.Fatalf("parsePlaceListOptions returned error: %v", err)
	}

	if opts.Sort != domain.PlaceSortCostAsc {
		t.Fatalf("expected sort %q, got %q", domain.PlaceSortCostAsc, opts.Sort)
	}
	if opts.Limit != 25 || opts.Skip != 50 {
		t.Fatalf("expected limit 25 skip 50, got %d/%d", opts.Limit, opts.Skip)
	}

	expectedTags := []string{"museum", "viewpoint", "free"}
	if len(opts.Filter.Tags) != len(expectedTags) {
		t.Fatalf("expected %d tags, got %d", len(expectedTags), len(opts.Filter.Tags))
	}
	for i, expected := range expectedTags {
		if opts.Filter.Tags[i] != expected {
			t.Fatalf("expected tag %q at position %d, got %q", expected, i, opts.Filter.Tags[i])
		}
	}

	if opts.Filter.MaxCost == nil || *opts.Filter.MaxCost != 40 {
		t.Fatalf("expected max cost 40, got %v", opts.Filter.MaxCost)
	}
	if opts.Filter.MinRating == nil || *opts.Filter.MinRating != 3.5 {
		t.Fatalf("expected min rating 3.5, got %v", opts.Filter.MinRating)
	}

	if !opts.Filter.IsOpenNow {
		t.Fatal("expected open-now filter to be enabled")
	}
	wantTime := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	if !opts.Filter.CurrentTime.Equal(wantTime) {
		t.Fatalf("expected current time %v, got %v", wantTime, opts.Filter.CurrentTime)
	}

	if opts.Filter.Origin == nil {
		t.Fatal("expected origin to be set")
	}
	if opts.Filter.Origin.Latitude != 13.7563 || opts.Filter.Origin.Longitude != 100.5018 {
		t.Fatalf("unexpected origin %+v", opts.Filter.Origin)
	}
	if opts.Filter.MaxDistance == nil || *opts.Filter.MaxDistance != 2500 {
		t.Fatalf("expected max distance 2500, got %v", opts.Filter.MaxDistance)
	}
}

func TestParsePlaceListOptionsDefaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/restaurants", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	opts, err := parsePlaceListOptions(c)
	if err != nil {
		t.Fatalf("parsePlaceListOptions returned error: %v", err)
	}
	if opts.Sort != domain.PlaceSortRatingDesc {
		t.Fatalf("expected default sort %q, got %q", domain.PlaceSortRatingDesc, opts.Sort)
	}
	if opts.Filter.Origin != nil {
		t.Fatalf("expected nil origin, got %+v", opts.Filter.Origin)
	}
	if opts.Filter.IsOpenNow {
		t.Fatal("expected open-now filter to be off by default")
	}
}

func TestParsePlaceListOptionsRejectsBadSort(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions?sort=alphabetical", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if _, err := parsePlaceListOptions(c); err == nil {
		t.Fatal("expected error for unknown sort, got nil")
	}
}

func TestParseOriginRequiresBothCoordinates(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions?lat=13.75", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if _, err := parseOrigin(c); err == nil {
		t.Fatal("expected error when lng is missing, got nil")
	}
}

func TestParseOriginRejectsOutOfRange(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attractions?lat=95&lng=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if _, err := parseOrigin(c); err == nil {
		t.Fatal("expected error for latitude outside [-90,90], got nil")
	}
}
