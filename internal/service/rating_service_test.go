package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
)

func TestRecomputeAveragesAndRounds(t *testing.T) {
	places := newFakePlaceRepo()
	reviews := newFakeReviewRepo()
	svc := NewRatingService(reviews, places, &fakeJobQueue{})

	place := places.put(&domain.Place{Kind: domain.PlaceKindRestaurant, Name: "Noodle Bar"})
	ref := place.Ref()
	for _, rating := range []int{5, 4, 3} {
		reviews.reviews[uuid.New()] = &domain.Review{
			ID: uuid.New(), PlaceID: ref.ID, PlaceType: ref.Kind, Rating: rating,
		}
	}

	if err := svc.Recompute(context.Background(), ref); err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}
	if place.OverallRating == nil || *place.OverallRating != 4.0 {
		t.Fatalf("expected rating 4.0, got %v", place.OverallRating)
	}

	// One-decimal rounding: mean of 4 and 5 is 4.5, mean of 4,4,5 is 4.3.
	reviews.summary = &domain.RatingSummary{Average: 4.333333, Count: 3}
	if err := svc.Recompute(context.Background(), ref); err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}
	if *place.OverallRating != 4.3 {
		t.Fatalf("expected rating rounded to 4.3, got %v", *place.OverallRating)
	}
}

func TestRecomputeZeroReviewsClearsRating(t *testing.T) {
	places := newFakePlaceRepo()
	reviews := newFakeReviewRepo()
	svc := NewRatingService(reviews, places, &fakeJobQueue{})

	existing := 4.2
	place := places.put(&domain.Place{Kind: domain.PlaceKindAttraction, Name: "Old Fort", OverallRating: &existing})

	if err := svc.Recompute(context.Background(), place.Ref()); err != nil {
		t.Fatalf("Recompute returned error: %v", err)
	}
	if place.OverallRating != nil {
		t.Fatalf("expected rating cleared when no reviews remain, got %v", *place.OverallRating)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	places := newFakePlaceRepo()
	reviews := newFakeReviewRepo()
	svc := NewRatingService(reviews, places, &fakeJobQueue{})

	place := places.put(&domain.Place{Kind: domain.PlaceKindAttraction, Name: "Pier"})
	ref := place.Ref()
	reviews.reviews[uuid.New()] = &domain.Review{ID: uuid.New(), PlaceID: ref.ID, PlaceType: ref.Kind, Rating: 5}

	for i := 0; i < 3; i++ {
		if err := svc.Recompute(context.Background(), ref); err != nil {
			t.Fatalf("Recompute pass %d returned error: %v", i, err)
		}
	}
	if len(places.ratingWrites) != 3 {
		t.Fatalf("expected 3 writes, got %d", len(places.ratingWrites))
	}
	for _, write := range places.ratingWrites {
		if write.rating == nil || *write.rating != 5.0 {
			t.Fatalf("expected every write to converge on 5.0, got %v", write.rating)
		}
	}
}

func TestNotifyReviewMutatedEnqueuesDelayedJob(t *testing.T) {
	queue := &fakeJobQueue{}
	svc := NewRatingService(newFakeReviewRepo(), newFakePlaceRepo(), queue)

	ref := domain.PlaceRef{Kind: domain.PlaceKindRestaurant, ID: uuid.New()}
	svc.NotifyReviewMutated(context.Background(), ref)

	if len(queue.jobs) != 1 {
		t.Fatalf("expected one enqueued job, got %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	if job.queue != RatingQueueName {
		t.Fatalf("expected queue %q, got %q", RatingQueueName, job.queue)
	}
	if job.delay != ratingDebounce {
		t.Fatalf("expected debounce delay %v, got %v", ratingDebounce, job.delay)
	}
	payload, ok := job.payload.(domain.RatingJob)
	if !ok {
		t.Fatalf("expected RatingJob payload, got %T", job.payload)
	}
	if payload.PlaceID != ref.ID.String() || payload.PlaceType != ref.Kind {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestNotifyReviewMutatedSwallowsEnqueueFailure(t *testing.T) {
	queue := &fakeJobQueue{enqueueErr: context.DeadlineExceeded}
	svc := NewRatingService(newFakeReviewRepo(), newFakePlaceRepo(), queue)

	// Must not panic or surface the error.
	svc.NotifyReviewMutated(context.Background(), domain.PlaceRef{Kind: domain.PlaceKindAttraction, ID: uuid.New()})
}

func TestHandleJobDecodesPayload(t *testing.T) {
	places := newFakePlaceRepo()
	reviews := newFakeReviewRepo()
	svc := NewRatingService(reviews, places, &fakeJobQueue{})

	place := places.put(&domain.Place{Kind: domain.PlaceKindRestaurant, Name: "Taqueria"})
	reviews.reviews[uuid.New()] = &domain.Review{ID: uuid.New(), PlaceID: place.ID, PlaceType: place.Kind, Rating: 4}

	payload, err := json.Marshal(domain.RatingJob{PlaceID: place.ID.String(), PlaceType: place.Kind})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := svc.HandleJob(context.Background(), payload); err != nil {
		t.Fatalf("HandleJob returned error: %v", err)
	}
	if place.OverallRating == nil || *place.OverallRating != 4.0 {
		t.Fatalf("expected rating 4.0, got %v", place.OverallRating)
	}
}

func TestHandleJobRejectsMalformedPayload(t *testing.T) {
	svc := NewRatingService(newFakeReviewRepo(), newFakePlaceRepo(), &fakeJobQueue{})

	if err := svc.HandleJob(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected error for truncated payload")
	}
	if err := svc.HandleJob(context.Background(), []byte(`{"place_id":"nope","place_type":"attraction"}`)); err == nil {
		t.Fatalf("expected error for invalid place id")
	}
	if err := svc.HandleJob(context.Background(), []byte(`{"place_id":"`+uuid.NewString()+`","place_type":"hotel"}`)); err == nil {
		t.Fatalf("expected error for unknown place kind")
	}
}
