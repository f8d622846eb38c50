package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

type PhotoRepository interface {
	CreateMany(ctx context.Context, photos []domain.Photo) error
	ListByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) ([]domain.Photo, error)
	ListByOwners(ctx context.Context, imageType domain.PhotoType, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Photo, error)
	DeleteByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) error
}
