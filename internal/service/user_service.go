package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

var (
	ErrSavedPlaceNotFound = errors.New("saved place not found")
	ErrUserValidation     = errors.New("user validation failed")
)

// SavedPlaceItem pairs a saved-list entry with the place it references. Place
// is nil when the place has been deleted since it was saved.
type SavedPlaceItem struct {
	domain.SavedPlace
	Place *domain.Place `json:"place,omitempty"`
}

type UserService struct {
	users    ports.UserRepository
	saved    ports.SavedPlaceRepository
	places   ports.PlaceRepository
	photos   ports.PhotoRepository
	uploader *photoUploader
}

func NewUserService(users ports.UserRepository, saved ports.SavedPlaceRepository, places ports.PlaceRepository, photos ports.PhotoRepository, storage ports.ObjectStorage, cfg PhotoUploaderConfig) *UserService {
	return &UserService{
		users:    users,
		saved:    saved,
		places:   places,
		photos:   photos,
		uploader: newPhotoUploader(storage, cfg),
	}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) UpdateNickname(ctx context.Context, id uuid.UUID, nickname string) (*domain.User, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return nil, fmt.Errorf("%w: nickname cannot be empty", ErrUserValidation)
	}
	if len(nickname) > 50 {
		return nil, fmt.Errorf("%w: nickname too long", ErrUserValidation)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Nickname = nickname
	if err := s.users.Update(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: nickname already taken", ErrUserValidation)
		}
		return nil, err
	}
	return user, nil
}

// UpdateAvatar replaces the user's avatar with a freshly uploaded image.
func (s *UserService) UpdateAvatar(ctx context.Context, id uuid.UUID, upload PhotoUpload) (*domain.User, error) {
	uploads := []PhotoUpload{upload}
	if err := s.uploader.validate(uploads); err != nil {
		return nil, err
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.uploader.upload(ctx, domain.PhotoTypeUser, id, id, uploads)
	if err != nil {
		return nil, err
	}
	if err := s.photos.DeleteByOwner(ctx, domain.PhotoTypeUser, id); err != nil {
		return nil, err
	}
	if err := s.photos.CreateMany(ctx, records); err != nil {
		return nil, err
	}

	user.AvatarURL = &records[0].ImageURL
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// SavePlace adds a place to the user's saved list. Saving a place twice is a
// no-op; saving a nonexistent place is rejected.
func (s *UserService) SavePlace(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if place == nil {
		return ErrPlaceNotFound
	}

	if err := s.saved.Add(ctx, userID, ref); err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *UserService) UnsavePlace(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	if err := s.saved.Remove(ctx, userID, ref); err != nil {
		if isNotFound(err) {
			return ErrSavedPlaceNotFound
		}
		return err
	}
	return nil
}

// ListSavedPlaces returns the user's saved list for one place kind, hydrated
// with the referenced places. Entries whose place has since been deleted stay
// in the list with a nil place.
func (s *UserService) ListSavedPlaces(ctx context.Context, userID uuid.UUID, kind domain.PlaceKind) ([]SavedPlaceItem, error) {
	entries, err := s.saved.ListByUser(ctx, userID, kind)
	if err != nil {
		return nil, err
	}

	items := make([]SavedPlaceItem, 0, len(entries))
	for _, entry := range entries {
		place, findErr := s.places.FindByID(ctx, entry.PlaceType, entry.PlaceID)
		if findErr != nil {
			return nil, findErr
		}
		items = append(items, SavedPlaceItem{SavedPlace: entry, Place: place})
	}
	return items, nil
}
