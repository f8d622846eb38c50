package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)

	// CountNicknamePrefix counts users whose nickname is either exactly
	// prefix or prefix followed by "#N", used to disambiguate derived
	// nicknames on collision.
	CountNicknamePrefix(ctx context.Context, prefix string) (int, error)
}

type SavedPlaceRepository interface {
	Add(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error
	Remove(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error
	ListByUser(ctx context.Context, userID uuid.UUID, kind domain.PlaceKind) ([]domain.SavedPlace, error)
}
