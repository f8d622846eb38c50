package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

var (
	ErrPlaceValidation = errors.New("place validation failed")
	ErrPlaceNotFound   = errors.New("place not found")
	ErrPlaceForbidden  = errors.New("not allowed to manage this place")
)

const searchResultLimit = 20

type PlaceCreateInput struct {
	Name         string
	Description  *string
	Website      *string
	ContactEmail *string
	ContactPhone *string
	OpenHours    domain.OpenHours
	Address      domain.Address
	Tags         []string
	Cost         int
	Photos       []PhotoUpload
}

type PlaceUpdateInput struct {
	Name         *string
	Description  *string
	Website      *string
	ContactEmail *string
	ContactPhone *string
	OpenHours    *domain.OpenHours
	Address      *domain.Address
	Tags         []string
	Cost         *int
}

type PlaceService struct {
	places    ports.PlaceRepository
	photos    ports.PhotoRepository
	uploader  *photoUploader
	sanitizer *bluemonday.Policy
}

func NewPlaceService(places ports.PlaceRepository, photos ports.PhotoRepository, storage ports.ObjectStorage, cfg PhotoUploaderConfig) *PlaceService {
	return &PlaceService{
		places:    places,
		photos:    photos,
		uploader:  newPhotoUploader(storage, cfg),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// List runs the filtered listing query for one place kind and hydrates the
// page's photos in a single batch.
func (s *PlaceService) List(ctx context.Context, kind domain.PlaceKind, opts domain.PlaceListOptions) (*domain.PlaceListResult, error) {
	normalized, err := opts.Normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPlaceValidation, err)
	}

	result, err := s.places.List(ctx, kind, normalized)
	if err != nil {
		return nil, err
	}
	if err := s.hydratePhotos(ctx, photoTypeFor(kind), result.Data); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PlaceService) Search(ctx context.Context, kind domain.PlaceKind, keyword string, origin *domain.GeoPoint, maxDistance *float64) ([]domain.Place, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword required", ErrPlaceValidation)
	}
	if maxDistance != nil && *maxDistance <= 0 {
		return nil, fmt.Errorf("%w: max distance must be positive", ErrPlaceValidation)
	}

	places, err := s.places.SearchByKeyword(ctx, kind, keyword, searchResultLimit, origin, maxDistance)
	if err != nil {
		return nil, err
	}
	if err := s.hydratePhotos(ctx, photoTypeFor(kind), places); err != nil {
		return nil, err
	}
	return places, nil
}

func (s *PlaceService) Get(ctx context.Context, ref domain.PlaceRef) (*domain.Place, error) {
	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrPlaceNotFound
	}

	photos, err := s.photos.ListByOwner(ctx, photoTypeFor(ref.Kind), ref.ID)
	if err != nil {
		return nil, err
	}
	place.Photos = photos
	return place, nil
}

func (s *PlaceService) Create(ctx context.Context, kind domain.PlaceKind, userID uuid.UUID, input PlaceCreateInput) (*domain.Place, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrPlaceValidation)
	}
	if input.Cost < 0 {
		return nil, fmt.Errorf("%w: cost cannot be negative", ErrPlaceValidation)
	}
	if err := s.uploader.validate(input.Photos); err != nil {
		return nil, err
	}

	place := &domain.Place{
		Kind:          kind,
		Name:          name,
		Description:   s.sanitizeOptional(input.Description),
		Website:       input.Website,
		ContactEmail:  input.ContactEmail,
		ContactPhone:  input.ContactPhone,
		OpenHours:     input.OpenHours,
		Address:       input.Address,
		Tags:          input.Tags,
		Cost:          input.Cost,
		CreatedUserID: userID,
	}

	stored, err := s.places.Create(ctx, kind, place)
	if err != nil {
		return nil, err
	}

	if len(input.Photos) > 0 {
		records, uploadErr := s.uploader.upload(ctx, photoTypeFor(kind), stored.ID, userID, input.Photos)
		if uploadErr != nil {
			_ = s.places.Delete(ctx, kind, stored.ID)
			return nil, uploadErr
		}
		if err := s.photos.CreateMany(ctx, records); err != nil {
			_ = s.places.Delete(ctx, kind, stored.ID)
			return nil, err
		}
		stored.Photos = records
	}
	return stored, nil
}

// Update applies the provided fields. Only the creating user or an admin may
// modify a place; the overall rating is owned by the rating pipeline and is
// never writable here.
func (s *PlaceService) Update(ctx context.Context, ref domain.PlaceRef, requesterID uuid.UUID, isAdmin bool, input PlaceUpdateInput) (*domain.Place, error) {
	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrPlaceNotFound
	}
	if place.CreatedUserID != requesterID && !isAdmin {
		return nil, ErrPlaceForbidden
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrPlaceValidation)
		}
		place.Name = name
	}
	if input.Description != nil {
		place.Description = s.sanitizeOptional(input.Description)
	}
	if input.Website != nil {
		place.Website = input.Website
	}
	if input.ContactEmail != nil {
		place.ContactEmail = input.ContactEmail
	}
	if input.ContactPhone != nil {
		place.ContactPhone = input.ContactPhone
	}
	if input.OpenHours != nil {
		place.OpenHours = *input.OpenHours
	}
	if input.Address != nil {
		place.Address = *input.Address
	}
	if input.Tags != nil {
		place.Tags = input.Tags
	}
	if input.Cost != nil {
		if *input.Cost < 0 {
			return nil, fmt.Errorf("%w: cost cannot be negative", ErrPlaceValidation)
		}
		place.Cost = *input.Cost
	}

	if err := s.places.Update(ctx, ref.Kind, place); err != nil {
		if isNotFound(err) {
			return nil, ErrPlaceNotFound
		}
		return nil, err
	}
	return place, nil
}

func (s *PlaceService) Delete(ctx context.Context, ref domain.PlaceRef, requesterID uuid.UUID, isAdmin bool) error {
	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if place == nil {
		return ErrPlaceNotFound
	}
	if place.CreatedUserID != requesterID && !isAdmin {
		return ErrPlaceForbidden
	}

	if err := s.photos.DeleteByOwner(ctx, photoTypeFor(ref.Kind), ref.ID); err != nil {
		return err
	}
	return s.places.Delete(ctx, ref.Kind, ref.ID)
}

func (s *PlaceService) AttachPhotos(ctx context.Context, ref domain.PlaceRef, requesterID uuid.UUID, isAdmin bool, uploads []PhotoUpload) ([]domain.Photo, error) {
	if err := s.uploader.validate(uploads); err != nil {
		return nil, err
	}

	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if place == nil {
		return nil, ErrPlaceNotFound
	}
	if place.CreatedUserID != requesterID && !isAdmin {
		return nil, ErrPlaceForbidden
	}

	records, err := s.uploader.upload(ctx, photoTypeFor(ref.Kind), ref.ID, requesterID, uploads)
	if err != nil {
		return nil, err
	}
	if err := s.photos.CreateMany(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *PlaceService) hydratePhotos(ctx context.Context, imageType domain.PhotoType, places []domain.Place) error {
	if len(places) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(places))
	for _, place := range places {
		ids = append(ids, place.ID)
	}
	photoMap, err := s.photos.ListByOwners(ctx, imageType, ids)
	if err != nil {
		return err
	}
	for i := range places {
		places[i].Photos = photoMap[places[i].ID]
	}
	return nil
}

func (s *PlaceService) sanitizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	clean := s.sanitizer.Sanitize(strings.TrimSpace(*raw))
	if clean == "" {
		return nil
	}
	return &clean
}

func photoTypeFor(kind domain.PlaceKind) domain.PhotoType {
	if kind == domain.PlaceKindRestaurant {
		return domain.PhotoTypeRestaurant
	}
	return domain.PhotoTypeAttraction
}
