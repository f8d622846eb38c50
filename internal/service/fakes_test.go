package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

// In-memory fakes backing the service tests. Error fields inject failures;
// call records let tests assert ordering guarantees.

type fakePlaceRepo struct {
	places map[domain.PlaceKind]map[uuid.UUID]*domain.Place

	listResult *domain.PlaceListResult
	listOpts   *domain.PlaceListOptions
	listErr    error

	searchResult []domain.Place
	searchErr    error

	ratingWrites []ratingWrite
	ratingErr    error

	findErr error
}

type ratingWrite struct {
	kind   domain.PlaceKind
	id     uuid.UUID
	rating *float64
}

func newFakePlaceRepo() *fakePlaceRepo {
	return &fakePlaceRepo{places: map[domain.PlaceKind]map[uuid.UUID]*domain.Place{
		domain.PlaceKindAttraction: {},
		domain.PlaceKindRestaurant: {},
	}}
}

func (f *fakePlaceRepo) put(place *domain.Place) *domain.Place {
	if place.ID == uuid.Nil {
		place.ID = uuid.New()
	}
	f.places[place.Kind][place.ID] = place
	return place
}

func (f *fakePlaceRepo) Create(ctx context.Context, kind domain.PlaceKind, place *domain.Place) (*domain.Place, error) {
	place.Kind = kind
	place.ID = uuid.New()
	place.CreatedAt = time.Now()
	place.UpdatedAt = place.CreatedAt
	f.places[kind][place.ID] = place
	return place, nil
}

func (f *fakePlaceRepo) Update(ctx context.Context, kind domain.PlaceKind, place *domain.Place) error {
	if _, ok := f.places[kind][place.ID]; !ok {
		return fmt.Errorf("update place: %w", sql.ErrNoRows)
	}
	f.places[kind][place.ID] = place
	return nil
}

func (f *fakePlaceRepo) Delete(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) error {
	if _, ok := f.places[kind][id]; !ok {
		return fmt.Errorf("delete place: %w", sql.ErrNoRows)
	}
	delete(f.places[kind], id)
	return nil
}

func (f *fakePlaceRepo) FindByID(ctx context.Context, kind domain.PlaceKind, id uuid.UUID) (*domain.Place, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	place, ok := f.places[kind][id]
	if !ok {
		return nil, nil
	}
	return place, nil
}

func (f *fakePlaceRepo) List(ctx context.Context, kind domain.PlaceKind, opts domain.PlaceListOptions) (*domain.PlaceListResult, error) {
	f.listOpts = &opts
	if f.listErr != nil {
		return nil, f.listErr
	}
	if f.listResult != nil {
		return f.listResult, nil
	}
	return &domain.PlaceListResult{Skip: opts.Skip, Limit: opts.Limit}, nil
}

func (f *fakePlaceRepo) SearchByKeyword(ctx context.Context, kind domain.PlaceKind, keyword string, limit int, origin *domain.GeoPoint, maxDistance *float64) ([]domain.Place, error) {
	return f.searchResult, f.searchErr
}

func (f *fakePlaceRepo) UpdateOverallRating(ctx context.Context, kind domain.PlaceKind, id uuid.UUID, rating *float64) error {
	if f.ratingErr != nil {
		return f.ratingErr
	}
	f.ratingWrites = append(f.ratingWrites, ratingWrite{kind: kind, id: id, rating: rating})
	if place, ok := f.places[kind][id]; ok {
		place.OverallRating = rating
	}
	return nil
}

type fakeReviewRepo struct {
	reviews map[uuid.UUID]*domain.Review

	summary    *domain.RatingSummary
	summaryErr error

	createErr error
	listErr   error
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uuid.UUID]*domain.Review{}}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	review.UpdatedAt = review.CreatedAt
	f.reviews[review.ID] = review
	return review, nil
}

func (f *fakeReviewRepo) Update(ctx context.Context, review *domain.Review) error {
	if _, ok := f.reviews[review.ID]; !ok {
		return fmt.Errorf("update review: %w", sql.ErrNoRows)
	}
	f.reviews[review.ID] = review
	return nil
}

func (f *fakeReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.reviews[id]; !ok {
		return fmt.Errorf("delete review: %w", sql.ErrNoRows)
	}
	delete(f.reviews, id)
	return nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	return review, nil
}

func (f *fakeReviewRepo) ListByPlace(ctx context.Context, ref domain.PlaceRef, filter domain.ReviewListFilter) ([]domain.Review, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.Review
	for _, review := range f.reviews {
		if review.PlaceID == ref.ID && review.PlaceType == ref.Kind {
			out = append(out, *review)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) AggregateRating(ctx context.Context, ref domain.PlaceRef) (*domain.RatingSummary, error) {
	if f.summaryErr != nil {
		return nil, f.summaryErr
	}
	if f.summary != nil {
		return f.summary, nil
	}
	var sum, count int
	for _, review := range f.reviews {
		if review.PlaceID == ref.ID && review.PlaceType == ref.Kind {
			sum += review.Rating
			count++
		}
	}
	summary := &domain.RatingSummary{Count: count}
	if count > 0 {
		summary.Average = float64(sum) / float64(count)
	}
	return summary, nil
}

type fakePhotoRepo struct {
	photos    []domain.Photo
	createErr error
}

func (f *fakePhotoRepo) CreateMany(ctx context.Context, photos []domain.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.photos = append(f.photos, photos...)
	return nil
}

func (f *fakePhotoRepo) ListByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) ([]domain.Photo, error) {
	var out []domain.Photo
	for _, photo := range f.photos {
		if photo.ImageType == imageType && photo.OwnerID == ownerID {
			out = append(out, photo)
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) ListByOwners(ctx context.Context, imageType domain.PhotoType, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Photo, error) {
	out := make(map[uuid.UUID][]domain.Photo)
	for _, id := range ownerIDs {
		photos, _ := f.ListByOwner(ctx, imageType, id)
		if len(photos) > 0 {
			out[id] = photos
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) DeleteByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) error {
	kept := f.photos[:0]
	for _, photo := range f.photos {
		if photo.ImageType != imageType || photo.OwnerID != ownerID {
			kept = append(kept, photo)
		}
	}
	f.photos = kept
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User

	createErr error
	updateErr error

	nicknameCounts map[string]int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}, nicknameCounts: map[string]int{}}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.users[user.ID]; !ok {
		return fmt.Errorf("update user: %w", sql.ErrNoRows)
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) CountNicknamePrefix(ctx context.Context, prefix string) (int, error) {
	return f.nicknameCounts[prefix], nil
}

type fakeSavedPlaceRepo struct {
	entries []domain.SavedPlace
}

func (f *fakeSavedPlaceRepo) Add(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.PlaceID == ref.ID && entry.PlaceType == ref.Kind {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	f.entries = append(f.entries, domain.SavedPlace{
		ID:        uuid.New(),
		UserID:    userID,
		PlaceID:   ref.ID,
		PlaceType: ref.Kind,
		CreatedAt: time.Now(),
	})
	return nil
}

func (f *fakeSavedPlaceRepo) Remove(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	for i, entry := range f.entries {
		if entry.UserID == userID && entry.PlaceID == ref.ID && entry.PlaceType == ref.Kind {
			f.entries = append(f.entries[:i], f.entries[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("remove saved place: %w", sql.ErrNoRows)
}

func (f *fakeSavedPlaceRepo) ListByUser(ctx context.Context, userID uuid.UUID, kind domain.PlaceKind) ([]domain.SavedPlace, error) {
	var out []domain.SavedPlace
	for _, entry := range f.entries {
		if entry.UserID == userID && entry.PlaceType == kind {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeObjectStorage struct {
	uploads   []string
	uploadErr error
}

func (f *fakeObjectStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	if reader != nil {
		_, _ = io.Copy(io.Discard, reader)
	}
	f.uploads = append(f.uploads, objectName)
	return "https://cdn.test/" + bucket + "/" + objectName, nil
}

type enqueuedJob struct {
	queue   string
	payload any
	delay   time.Duration
}

type fakeJobQueue struct {
	jobs       []enqueuedJob
	enqueueErr error
}

func (f *fakeJobQueue) Enqueue(ctx context.Context, queue string, payload any, delay time.Duration) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, enqueuedJob{queue: queue, payload: payload, delay: delay})
	return nil
}

type fakeRatingNotifier struct {
	refs []domain.PlaceRef
}

func (f *fakeRatingNotifier) NotifyReviewMutated(ctx context.Context, ref domain.PlaceRef) {
	f.refs = append(f.refs, ref)
}
