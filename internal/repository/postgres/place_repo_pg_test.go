package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

func TestBuildPlaceListQuery_DefaultPagination(t *testing.T) {
	opts, err := domain.PlaceListOptions{}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	query, args := buildPlaceListQuery("attraction", opts)

	if !strings.Contains(query, "COUNT(*) OVER() AS total_count") {
		t.Fatalf("expected window count in query:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY p.overall_rating DESC NULLS LAST, p.id DESC") {
		t.Fatalf("expected default rating_desc sort with id tie-break:\n%s", query)
	}
	if strings.Contains(query, "WHERE") {
		t.Fatalf("expected no WHERE clause without filters:\n%s", query)
	}
	if len(args) != 2 {
		t.Fatalf("expected only limit/offset args, got %v", args)
	}
	if args[0] != domain.DefaultPlaceListLimit || args[1] != 0 {
		t.Fatalf("expected default limit %d and skip 0, got %v", domain.DefaultPlaceListLimit, args)
	}
}

func TestBuildPlaceListQuery_AllFilters(t *testing.T) {
	maxCost := 3
	minRating := 4.0
	maxDistance := 2500.0
	// 2026-03-02 is a Monday.
	current := time.Date(2026, 3, 2, 14, 30, 0, 0, time.UTC)

	opts, err := domain.PlaceListOptions{
		Sort:  domain.PlaceSortCostAsc,
		Limit: 5,
		Skip:  10,
		Filter: domain.PlaceListFilter{
			Tags:        []string{"museum", "landmark"},
			MaxCost:     &maxCost,
			MinRating:   &minRating,
			IsOpenNow:   true,
			CurrentTime: current,
			Origin:      &domain.GeoPoint{Longitude: 106.7, Latitude: 10.77},
			MaxDistance: &maxDistance,
		},
	}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	query, args := buildPlaceListQuery("restaurant", opts)

	// The geo stage must come first so later stages can reference distance.
	if !strings.Contains(query, "AS distance FROM restaurant p") {
		t.Fatalf("expected distance stage against restaurant table:\n%s", query)
	}
	if !strings.Contains(query, "p.distance <=") {
		t.Fatalf("expected distance bound:\n%s", query)
	}
	if !strings.Contains(query, "p.tags && $") {
		t.Fatalf("expected tag overlap clause:\n%s", query)
	}
	if !strings.Contains(query, "p.cost <=") || !strings.Contains(query, "p.overall_rating >=") {
		t.Fatalf("expected cost ceiling and rating floor:\n%s", query)
	}
	if !strings.Contains(query, "isClosed") || !strings.Contains(query, "periods") {
		t.Fatalf("expected both open-now checks:\n%s", query)
	}
	if !strings.Contains(query, "ORDER BY p.cost ASC, p.id DESC") {
		t.Fatalf("expected cost_asc sort:\n%s", query)
	}

	// lat, lng, maxDistance, tags array, maxCost, minRating, day, clock,
	// limit, skip.
	if len(args) != 10 {
		t.Fatalf("expected 10 args, got %d: %v", len(args), args)
	}
	if args[0] != 10.77 || args[1] != 106.7 {
		t.Fatalf("expected latitude then longitude first, got %v", args[:2])
	}
	if args[2] != 2500.0 {
		t.Fatalf("expected max distance arg, got %v", args[2])
	}
	tags, ok := args[3].(pq.StringArray)
	if !ok || len(tags) != 2 || tags[0] != "museum" || tags[1] != "landmark" {
		t.Fatalf("expected tags bound as a string array, got %#v", args[3])
	}

	foundDay := false
	foundClock := false
	for _, arg := range args {
		if arg == "monday" {
			foundDay = true
		}
		if arg == "14:30" {
			foundClock = true
		}
	}
	if !foundDay || !foundClock {
		t.Fatalf("expected derived weekday and clock in args, got %v", args)
	}

	if args[len(args)-2] != 5 || args[len(args)-1] != 10 {
		t.Fatalf("expected limit 5 skip 10 last, got %v", args[len(args)-2:])
	}
}

func TestBuildPlaceListQuery_OpenNowOffAddsNoOpenClauses(t *testing.T) {
	opts, err := domain.PlaceListOptions{}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	query, _ := buildPlaceListQuery("attraction", opts)
	if strings.Contains(query, "isClosed") || strings.Contains(query, "periods") {
		t.Fatalf("open-now clauses must not appear when the flag is off:\n%s", query)
	}
}

func TestBuildPlaceListQuery_DefaultGeoBound(t *testing.T) {
	opts, err := domain.PlaceListOptions{
		Filter: domain.PlaceListFilter{
			Origin: &domain.GeoPoint{Longitude: 1, Latitude: 2},
		},
	}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	_, args := buildPlaceListQuery("attraction", opts)
	if args[2] != domain.DefaultSearchMaxDistance {
		t.Fatalf("expected default max distance %v, got %v", domain.DefaultSearchMaxDistance, args[2])
	}
}

func TestBuildPlaceCountQuery_DropsPagination(t *testing.T) {
	opts, err := domain.PlaceListOptions{Limit: 7, Skip: 14}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	query, args := buildPlaceCountQuery("attraction", opts)
	if strings.Contains(query, "LIMIT") || strings.Contains(query, "OFFSET") {
		t.Fatalf("count query must not paginate:\n%s", query)
	}
	if !strings.Contains(query, "SELECT COUNT(*)") {
		t.Fatalf("expected plain count:\n%s", query)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args without filters, got %v", args)
	}
}

func TestBuildSearchQuery_KeywordOnly(t *testing.T) {
	query, args := buildSearchQuery("attraction", "pagoda", 25, nil, nil)

	if !strings.Contains(query, "ILIKE $1") {
		t.Fatalf("expected case-insensitive match:\n%s", query)
	}
	if strings.Contains(query, "distance") {
		t.Fatalf("keyword-only mode must not involve distance:\n%s", query)
	}
	if args[0] != "%pagoda%" {
		t.Fatalf("expected substring pattern, got %v", args[0])
	}
	if args[1] != 25 {
		t.Fatalf("expected limit arg, got %v", args[1])
	}
}

func TestBuildSearchQuery_WithOrigin(t *testing.T) {
	origin := &domain.GeoPoint{Longitude: 106.7, Latitude: 10.77}
	query, args := buildSearchQuery("restaurant", "pho", 10, origin, nil)

	if !strings.Contains(query, "ORDER BY p.distance ASC") {
		t.Fatalf("expected nearest-first ordering:\n%s", query)
	}
	if !strings.Contains(query, "p.distance <= $4") {
		t.Fatalf("expected distance bound:\n%s", query)
	}
	if args[3] != domain.DefaultSearchMaxDistance {
		t.Fatalf("expected default 10000 bound when unspecified, got %v", args[3])
	}

	custom := 1500.0
	_, args = buildSearchQuery("restaurant", "pho", 10, origin, &custom)
	if args[3] != 1500.0 {
		t.Fatalf("expected explicit bound, got %v", args[3])
	}
}

func TestBuildSearchQuery_EscapesLikeMetacharacters(t *testing.T) {
	_, args := buildSearchQuery("attraction", `100%_pho\real`, 10, nil, nil)

	want := `%100\%\_pho\\real%`
	if args[0] != want {
		t.Fatalf("expected escaped pattern %q, got %v", want, args[0])
	}

	// A bare wildcard keyword must match the literal character only.
	_, args = buildSearchQuery("attraction", "%", 10, nil, nil)
	if args[0] != `%\%%` {
		t.Fatalf("expected literal-percent pattern, got %v", args[0])
	}
}

func TestTableFor_RejectsUnknownKind(t *testing.T) {
	if _, err := tableFor(domain.PlaceKind("hotel")); err == nil {
		t.Fatal("expected error for unknown kind")
	}
	table, err := tableFor(domain.PlaceKindAttraction)
	if err != nil || table != "attraction" {
		t.Fatalf("expected attraction table, got %q (%v)", table, err)
	}
}
