package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

const (
	// RatingQueueName is the queue carrying recomputation jobs.
	RatingQueueName = "rating-recompute"

	// ratingDebounce delays job eligibility so burst writes to the same
	// place collapse into less redundant work. Not a correctness knob:
	// every job recomputes from scratch.
	ratingDebounce = 5 * time.Second
)

// RatingService owns the denormalized overall_rating on place rows. It is
// the only writer of that column; user-facing place mutations never touch it.
type RatingService struct {
	reviews ports.ReviewRepository
	places  ports.PlaceRepository
	jobs    ports.JobQueue
}

func NewRatingService(reviews ports.ReviewRepository, places ports.PlaceRepository, jobs ports.JobQueue) *RatingService {
	return &RatingService{reviews: reviews, places: places, jobs: jobs}
}

// NotifyReviewMutated enqueues a recomputation job for the place a review
// points at. Fire-and-forget: the review mutation has already committed, so
// an enqueue failure is logged and swallowed. The rating stays stale until
// the next mutation of the same place.
func (s *RatingService) NotifyReviewMutated(ctx context.Context, ref domain.PlaceRef) {
	job := domain.RatingJob{PlaceID: ref.ID.String(), PlaceType: ref.Kind}
	if err := s.jobs.Enqueue(ctx, RatingQueueName, job, ratingDebounce); err != nil {
		log.Printf("rating: enqueue for %s failed: %v", ref, err)
	}
}

// Recompute derives the place's overall rating from the current review
// state: the arithmetic mean of all its review ratings, rounded to one
// decimal. Zero remaining reviews is a valid terminal state and clears the
// rating. Idempotent, so duplicate or out-of-order delivery converges.
func (s *RatingService) Recompute(ctx context.Context, ref domain.PlaceRef) error {
	summary, err := s.reviews.AggregateRating(ctx, ref)
	if err != nil {
		return fmt.Errorf("aggregate reviews for %s: %w", ref, err)
	}

	var rating *float64
	if summary.Count > 0 {
		rounded := math.Round(summary.Average*10) / 10
		rating = &rounded
	}

	if err := s.places.UpdateOverallRating(ctx, ref.Kind, ref.ID, rating); err != nil {
		return fmt.Errorf("write rating for %s: %w", ref, err)
	}
	return nil
}

// HandleJob is the queue consumer entry point.
func (s *RatingService) HandleJob(ctx context.Context, payload []byte) error {
	var job domain.RatingJob
	if err := json.Unmarshal(payload, &job); err != nil {
		return fmt.Errorf("decode rating job: %w", err)
	}

	id, err := uuid.Parse(job.PlaceID)
	if err != nil {
		return fmt.Errorf("rating job place id %q: %w", job.PlaceID, err)
	}
	kind, err := domain.ParsePlaceKind(string(job.PlaceType))
	if err != nil {
		return fmt.Errorf("rating job: %w", err)
	}

	return s.Recompute(ctx, domain.PlaceRef{Kind: kind, ID: id})
}
