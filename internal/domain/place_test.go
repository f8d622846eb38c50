package domain

import (
	"testing"
	"time"
)

func TestDayHoursIsOpenAt(t *testing.T) {
	lunchAndDinner := DayHours{
		Periods: []TimePeriod{
			{Open: "11:00", Close: "14:00"},
			{Open: "17:30", Close: "22:00"},
		},
	}

	cases := []struct {
		name  string
		day   DayHours
		clock string
		want  bool
	}{
		{"inside first period", lunchAndDinner, "12:15", true},
		{"between periods", lunchAndDinner, "15:00", false},
		{"inside second period", lunchAndDinner, "21:59", true},
		{"open boundary inclusive", lunchAndDinner, "11:00", true},
		{"close boundary exclusive", lunchAndDinner, "14:00", false},
		{"open all day", DayHours{IsOpenAllDay: true}, "03:00", true},
		{"closed wins over periods", DayHours{IsClosed: true, Periods: []TimePeriod{{Open: "00:00", Close: "23:59"}}}, "12:00", false},
		{"no schedule", DayHours{}, "12:00", false},
	}

	for _, tc := range cases {
		if got := tc.day.IsOpenAt(tc.clock); got != tc.want {
			t.Fatalf("%s: IsOpenAt(%q) = %v, want %v", tc.name, tc.clock, got, tc.want)
		}
	}
}

func TestWeekdayAndClock(t *testing.T) {
	// 2026-03-02 is a Monday.
	day, clock := WeekdayAndClock(time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC))
	if day != "monday" {
		t.Fatalf("expected monday, got %q", day)
	}
	if clock != "09:05" {
		t.Fatalf("expected zero-padded clock, got %q", clock)
	}

	day, _ = WeekdayAndClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	if day != "sunday" {
		t.Fatalf("expected sunday, got %q", day)
	}
}

func TestPlaceListOptionsNormalize(t *testing.T) {
	out, err := PlaceListOptions{}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if out.Sort != PlaceSortRatingDesc || out.Limit != DefaultPlaceListLimit || out.Skip != 0 {
		t.Fatalf("unexpected defaults: %+v", out)
	}

	out, err = PlaceListOptions{Limit: 9999, Skip: -3}.Normalize()
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if out.Limit != MaxPlaceListLimit {
		t.Fatalf("expected limit clamped to %d, got %d", MaxPlaceListLimit, out.Limit)
	}
	if out.Skip != 0 {
		t.Fatalf("expected negative skip reset, got %d", out.Skip)
	}

	badRating := 6.0
	if _, err := (PlaceListOptions{Filter: PlaceListFilter{MinRating: &badRating}}).Normalize(); err == nil {
		t.Fatal("expected error for rating above 5")
	}
	badCost := -1
	if _, err := (PlaceListOptions{Filter: PlaceListFilter{MaxCost: &badCost}}).Normalize(); err == nil {
		t.Fatal("expected error for negative cost ceiling")
	}
	if _, err := (PlaceListOptions{Filter: PlaceListFilter{IsOpenNow: true}}).Normalize(); err == nil {
		t.Fatal("expected error when open-now lacks a current time")
	}
	badDistance := 0.0
	if _, err := (PlaceListOptions{Filter: PlaceListFilter{MaxDistance: &badDistance}}).Normalize(); err == nil {
		t.Fatal("expected error for non-positive max distance")
	}
}

func TestParsePlaceKind(t *testing.T) {
	kind, err := ParsePlaceKind(" Restaurant ")
	if err != nil || kind != PlaceKindRestaurant {
		t.Fatalf("expected restaurant, got %q (%v)", kind, err)
	}
	if _, err := ParsePlaceKind("hotel"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
