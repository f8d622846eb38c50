package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Nickname     string    `db:"nickname" json:"nickname"`
	PasswordHash []byte    `db:"password_hash" json:"-"`
	PasswordSalt []byte    `db:"password_salt" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	AvatarURL    *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Verified     bool      `db:"verified" json:"verified"`

	VerifyOTP       *string    `db:"verify_otp" json:"-"`
	VerifyExpiresAt *time.Time `db:"verify_expires_at" json:"-"`
	ResetOTP        *string    `db:"reset_otp" json:"-"`
	ResetExpiresAt  *time.Time `db:"reset_expires_at" json:"-"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// SavedPlace is one entry of a user's saved-attractions or saved-restaurants
// list.
type SavedPlace struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PlaceID   uuid.UUID `db:"place_id" json:"place_id"`
	PlaceType PlaceKind `db:"place_type" json:"place_type"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
