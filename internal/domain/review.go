package domain

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Rating      int       `db:"rating" json:"rating"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	PlaceID     uuid.UUID `db:"place_id" json:"place_id"`
	PlaceType   PlaceKind `db:"place_type" json:"place_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`

	AuthorNickname *string `db:"author_nickname" json:"-"`
	AuthorAvatar   *string `db:"author_avatar_url" json:"-"`

	Photos []Photo `db:"-" json:"photos,omitempty"`
}

func (r *Review) Place() PlaceRef {
	return PlaceRef{Kind: r.PlaceType, ID: r.PlaceID}
}

type ReviewListFilter struct {
	Limit  int
	Offset int
}

// RatingSummary is the aggregate a recomputation job derives from the review
// table. Count 0 carries no average.
type RatingSummary struct {
	Average float64 `db:"average_rating"`
	Count   int     `db:"total_reviews"`
}
