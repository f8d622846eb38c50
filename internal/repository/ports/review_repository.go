package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)
	Update(ctx context.Context, review *domain.Review) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	ListByPlace(ctx context.Context, ref domain.PlaceRef, filter domain.ReviewListFilter) ([]domain.Review, error)

	// AggregateRating computes the mean rating over all reviews referencing
	// the place. Count 0 means no reviews remain and Average is undefined.
	AggregateRating(ctx context.Context, ref domain.PlaceRef) (*domain.RatingSummary, error)
}
