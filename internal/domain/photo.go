package domain

import (
	"time"

	"github.com/google/uuid"
)

// PhotoType tags the entity a photo belongs to. Photos have no independent
// lifecycle; they are owned by whatever references them.
type PhotoType string

const (
	PhotoTypeAttraction PhotoType = "attraction"
	PhotoTypeRestaurant PhotoType = "restaurant"
	PhotoTypeUser       PhotoType = "user"
	PhotoTypeReview     PhotoType = "review"
)

type Photo struct {
	ID         uuid.UUID `db:"id" json:"id"`
	ImageAlt   string    `db:"image_alt" json:"image_alt"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	ObjectKey  string    `db:"object_key" json:"-"`
	ImageType  PhotoType `db:"image_type" json:"image_type"`
	OwnerID    uuid.UUID `db:"owner_id" json:"owner_id"`
	UploaderID uuid.UUID `db:"uploader_id" json:"uploader_id"`
	Ordering   int       `db:"ordering" json:"ordering"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
