package domain

// RatingJob is the payload of one rating-recomputation job. The job carries
// only the place reference; the worker recomputes from current review state,
// so duplicate and out-of-order delivery are safe.
type RatingJob struct {
	PlaceID   string    `json:"place_id"`
	PlaceType PlaceKind `json:"place_type"`
}
