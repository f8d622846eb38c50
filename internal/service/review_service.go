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
	ErrReviewValidation = errors.New("review validation failed")
	ErrReviewNotFound   = errors.New("review not found")
	ErrReviewForbidden  = errors.New("not allowed to manage this review")
)

// RatingNotifier receives fire-and-forget triggers after committed review
// mutations. Implemented by RatingService.
type RatingNotifier interface {
	NotifyReviewMutated(ctx context.Context, ref domain.PlaceRef)
}

type ReviewCreateInput struct {
	Title       string
	Description string
	Rating      int
	Photos      []PhotoUpload
}

type ReviewUpdateInput struct {
	Title       *string
	Description *string
	Rating      *int
}

type ReviewService struct {
	reviews   ports.ReviewRepository
	places    ports.PlaceRepository
	photos    ports.PhotoRepository
	ratings   RatingNotifier
	uploader  *photoUploader
	sanitizer *bluemonday.Policy
}

func NewReviewService(
	reviews ports.ReviewRepository,
	places ports.PlaceRepository,
	photos ports.PhotoRepository,
	ratings RatingNotifier,
	storage ports.ObjectStorage,
	cfg PhotoUploaderConfig,
) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		places:    places,
		photos:    photos,
		ratings:   ratings,
		uploader:  newPhotoUploader(storage, cfg),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// CreateReview validates input and place existence before anything is
// uploaded or written, then persists the review, uploads its photos, and
// finally triggers rating recomputation.
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef, input ReviewCreateInput) (*domain.Review, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrReviewValidation)
	}
	if err := validateReviewRating(input.Rating); err != nil {
		return nil, err
	}
	if err := s.uploader.validate(input.Photos); err != nil {
		return nil, err
	}
	if err := s.ensurePlaceExists(ctx, ref); err != nil {
		return nil, err
	}

	review := &domain.Review{
		Title:       title,
		Description: s.sanitizer.Sanitize(strings.TrimSpace(input.Description)),
		Rating:      input.Rating,
		UserID:      userID,
		PlaceID:     ref.ID,
		PlaceType:   ref.Kind,
	}

	stored, err := s.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}

	if len(input.Photos) > 0 {
		records, uploadErr := s.uploader.upload(ctx, domain.PhotoTypeReview, stored.ID, userID, input.Photos)
		if uploadErr != nil {
			_ = s.reviews.Delete(ctx, stored.ID)
			return nil, uploadErr
		}
		if err := s.photos.CreateMany(ctx, records); err != nil {
			_ = s.reviews.Delete(ctx, stored.ID)
			return nil, err
		}
		stored.Photos = records
	}

	s.ratings.NotifyReviewMutated(ctx, ref)
	return stored, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, reviewID, requesterID uuid.UUID, input ReviewUpdateInput) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	if review.UserID != requesterID {
		return nil, ErrReviewForbidden
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrReviewValidation)
		}
		review.Title = title
	}
	if input.Description != nil {
		review.Description = s.sanitizer.Sanitize(strings.TrimSpace(*input.Description))
	}
	if input.Rating != nil {
		if err := validateReviewRating(*input.Rating); err != nil {
			return nil, err
		}
		review.Rating = *input.Rating
	}

	if err := s.reviews.Update(ctx, review); err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}

	s.ratings.NotifyReviewMutated(ctx, review.Place())
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, reviewID, requesterID uuid.UUID, isAdmin bool) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review == nil {
		return ErrReviewNotFound
	}
	if review.UserID != requesterID && !isAdmin {
		return ErrReviewForbidden
	}

	if err := s.photos.DeleteByOwner(ctx, domain.PhotoTypeReview, reviewID); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return err
	}

	s.ratings.NotifyReviewMutated(ctx, review.Place())
	return nil
}

func (s *ReviewService) ListPlaceReviews(ctx context.Context, ref domain.PlaceRef, filter domain.ReviewListFilter) ([]domain.Review, error) {
	if err := s.ensurePlaceExists(ctx, ref); err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByPlace(ctx, ref, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(reviews))
	for _, review := range reviews {
		ids = append(ids, review.ID)
	}
	if len(ids) > 0 {
		photoMap, photoErr := s.photos.ListByOwners(ctx, domain.PhotoTypeReview, ids)
		if photoErr != nil {
			return nil, photoErr
		}
		for i := range reviews {
			reviews[i].Photos = photoMap[reviews[i].ID]
		}
	}
	return reviews, nil
}

func (s *ReviewService) ensurePlaceExists(ctx context.Context, ref domain.PlaceRef) error {
	if ref.ID == uuid.Nil {
		return ErrPlaceNotFound
	}
	place, err := s.places.FindByID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return err
	}
	if place == nil {
		return ErrPlaceNotFound
	}
	return nil
}

func validateReviewRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewValidation)
	}
	return nil
}
