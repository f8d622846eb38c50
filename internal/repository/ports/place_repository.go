package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

type PlaceRepository interface {
	Create(ctx context.Context, kind domain.PlaceKind, place *domain.Place) (*domain.Place, error)
	Update(ctx context.Context, kind domain.PlaceKind, place *domain.Place) error
	Delete(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) error
	FindByID(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) (*domain.Place, error)

	// List runs the filtered listing query: one round trip returning the
	// requested page and the pre-pagination total. Options are assumed
	// normalized.
	List(ctx context.Context, kind domain.PlaceKind, opts domain.PlaceListOptions) (*domain.PlaceListResult, error)

	// SearchByKeyword matches keyword case-insensitively against name and
	// description. With an origin the results are distance-bounded and
	// ordered nearest first; without one they keep natural order.
	SearchByKeyword(ctx context.Context, kind domain.PlaceKind, keyword string, limit int, origin *domain.GeoPoint, maxDistance *float64) ([]domain.Place, error)

	// UpdateOverallRating is reserved for the rating pipeline; rating is nil
	// when no reviews remain.
	UpdateOverallRating(ctx context.Context, kind domain.PlaceKind, id uuid.UUID, rating *float64) error
}
