package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PlaceKind discriminates the two place collections. Reviews, photos and
// saved-place rows reference a place through a (kind, id) pair, never through
// a bare id.
type PlaceKind string

const (
	PlaceKindAttraction PlaceKind = "attraction"
	PlaceKindRestaurant PlaceKind = "restaurant"
)

func ParsePlaceKind(raw string) (PlaceKind, error) {
	switch PlaceKind(strings.ToLower(strings.TrimSpace(raw))) {
	case PlaceKindAttraction:
		return PlaceKindAttraction, nil
	case PlaceKindRestaurant:
		return PlaceKindRestaurant, nil
	}
	return "", fmt.Errorf("unknown place kind %q", raw)
}

// PlaceRef is a tagged reference into one of the two place tables. Lookup is
// always dispatched on Kind.
type PlaceRef struct {
	Kind PlaceKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (r PlaceRef) String() string {
	return string(r.Kind) + "/" + r.ID.String()
}

// GeoPoint carries a WGS84 coordinate. JSON keeps longitude first to match
// the on-disk ordering the geo queries rely on.
type GeoPoint struct {
	Longitude float64 `json:"lng"`
	Latitude  float64 `json:"lat"`
}

type Address struct {
	Formatted string   `json:"formatted"`
	Location  GeoPoint `json:"location"`
}

// TimePeriod is a single open interval within a day, both ends as "HH:mm".
type TimePeriod struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

type DayHours struct {
	IsOpenAllDay bool         `json:"isOpenAllDay"`
	IsClosed     bool         `json:"isClosed"`
	Periods      []TimePeriod `json:"periods,omitempty"`
}

// IsOpenAt reports whether clock (an "HH:mm" string) falls inside the day's
// schedule. A day flagged closed is never open, regardless of its periods.
func (d DayHours) IsOpenAt(clock string) bool {
	if d.IsClosed {
		return false
	}
	if d.IsOpenAllDay {
		return true
	}
	for _, p := range d.Periods {
		if p.Open <= clock && clock < p.Close {
			return true
		}
	}
	return false
}

// OpenHours maps lowercase weekday names ("monday" .. "sunday") to that day's
// schedule. Stored as a JSONB column.
type OpenHours map[string]DayHours

var weekdayNames = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// WeekdayAndClock derives the lowercase weekday name and "HH:mm" clock string
// from a caller-supplied timestamp. Open-now filtering always uses the
// caller's timestamp, not the server clock, so results stay deterministic and
// timezone-correct.
func WeekdayAndClock(at time.Time) (string, string) {
	return weekdayNames[int(at.Weekday())], at.Format("15:04")
}

type AttractionTags struct {
	SightTypes []string `json:"sightTypes,omitempty"`
	Durations  []string `json:"durations,omitempty"`
}

type RestaurantTags struct {
	MealTypes []string `json:"mealTypes,omitempty"`
	Cuisines  []string `json:"cuisines,omitempty"`
}

// Place backs both the attraction and restaurant tables; the two schemas are
// identical apart from the facet vocabulary carried in Tags.
type Place struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Kind          PlaceKind  `db:"-" json:"kind"`
	Name          string     `db:"name" json:"name"`
	Description   *string    `db:"description" json:"description,omitempty"`
	Website       *string    `db:"website" json:"website,omitempty"`
	ContactEmail  *string    `db:"contact_email" json:"contact_email,omitempty"`
	ContactPhone  *string    `db:"contact_phone" json:"contact_phone,omitempty"`
	OpenHours     OpenHours  `db:"-" json:"open_hours,omitempty"`
	Address       Address    `db:"-" json:"address"`
	OverallRating *float64   `db:"overall_rating" json:"overall_rating,omitempty"`
	Tags          []string   `db:"-" json:"tags,omitempty"`
	Cost          int        `db:"cost" json:"cost"`
	CreatedUserID uuid.UUID  `db:"created_user_id" json:"created_user_id"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	Distance      *float64   `db:"-" json:"distance,omitempty"`
	Photos        []Photo    `db:"-" json:"photos,omitempty"`
}

func (p *Place) Ref() PlaceRef {
	return PlaceRef{Kind: p.Kind, ID: p.ID}
}

// PlaceSort is the fixed sort vocabulary for place listings.
type PlaceSort string

const (
	PlaceSortRatingAsc  PlaceSort = "rating_asc"
	PlaceSortRatingDesc PlaceSort = "rating_desc"
	PlaceSortCostAsc    PlaceSort = "cost_asc"
	PlaceSortCostDesc   PlaceSort = "cost_desc"
)

func ParsePlaceSort(raw string) (PlaceSort, error) {
	if strings.TrimSpace(raw) == "" {
		return PlaceSortRatingDesc, nil
	}
	switch PlaceSort(raw) {
	case PlaceSortRatingAsc, PlaceSortRatingDesc, PlaceSortCostAsc, PlaceSortCostDesc:
		return PlaceSort(raw), nil
	}
	return "", fmt.Errorf("unknown sort %q", raw)
}

const (
	DefaultPlaceListLimit = 10
	MaxPlaceListLimit     = 100

	// DefaultSearchMaxDistance bounds geo keyword search when the caller
	// omits an explicit radius, in meters.
	DefaultSearchMaxDistance = 10000.0
)

// PlaceListFilter is the optional filter block of a listing request. All
// predicates are conjunctive; Tags uses any-of semantics against the place's
// facet list.
type PlaceListFilter struct {
	Tags        []string
	MaxCost     *int
	MinRating   *float64
	IsOpenNow   bool
	CurrentTime time.Time
	Origin      *GeoPoint
	MaxDistance *float64
}

type PlaceListOptions struct {
	Sort   PlaceSort
	Limit  int
	Skip   int
	Filter PlaceListFilter
}

// Normalize applies listing defaults and validates ranges. It mirrors the
// upstream validation layer: repositories trust options that have passed
// through here.
func (o PlaceListOptions) Normalize() (PlaceListOptions, error) {
	out := o
	if out.Sort == "" {
		out.Sort = PlaceSortRatingDesc
	}
	switch out.Sort {
	case PlaceSortRatingAsc, PlaceSortRatingDesc, PlaceSortCostAsc, PlaceSortCostDesc:
	default:
		return PlaceListOptions{}, fmt.Errorf("unknown sort %q", out.Sort)
	}
	if out.Limit <= 0 {
		out.Limit = DefaultPlaceListLimit
	}
	if out.Limit > MaxPlaceListLimit {
		out.Limit = MaxPlaceListLimit
	}
	if out.Skip < 0 {
		out.Skip = 0
	}
	if out.Filter.MaxCost != nil && *out.Filter.MaxCost < 0 {
		return PlaceListOptions{}, errors.New("max cost cannot be negative")
	}
	if out.Filter.MinRating != nil && (*out.Filter.MinRating < 0 || *out.Filter.MinRating > 5) {
		return PlaceListOptions{}, errors.New("min rating must be within [0,5]")
	}
	if out.Filter.IsOpenNow && out.Filter.CurrentTime.IsZero() {
		return PlaceListOptions{}, errors.New("open-now filter requires a current time")
	}
	if out.Filter.MaxDistance != nil && *out.Filter.MaxDistance <= 0 {
		return PlaceListOptions{}, errors.New("max distance must be positive")
	}
	return out, nil
}

// PlaceListResult is one page of matches plus the pre-pagination total.
type PlaceListResult struct {
	Total int     `json:"total"`
	Skip  int     `json:"skip"`
	Limit int     `json:"limit"`
	Data  []Place `json:"data"`
}
