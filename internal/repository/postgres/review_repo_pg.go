package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepo(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	const query = `
		INSERT INTO review (title, description, rating, user_id, place_id, place_type)
		VALUES (:title, :description, :rating, :user_id, :place_id, :place_type)
		RETURNING id, title, description, rating, user_id, place_id, place_type, created_at, updated_at
	`
	args := map[string]any{
		"title":       review.Title,
		"description": review.Description,
		"rating":      review.Rating,
		"user_id":     review.UserID,
		"place_id":    review.PlaceID,
		"place_type":  review.PlaceType,
	}

	rows, err := r.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		var stored domain.Review
		if err := rows.StructScan(&stored); err != nil {
			return nil, err
		}
		return &stored, nil
	}
	return nil, sql.ErrNoRows
}

func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) error {
	const query = `
		UPDATE review
		SET title = $2, description = $3, rating = $4, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, review.ID, review.Title, review.Description, review.Rating)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM review WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	const query = `
		SELECT
			r.id, r.title, r.description, r.rating, r.user_id, r.place_id,
			r.place_type, r.created_at, r.updated_at,
			u.nickname AS author_nickname,
			u.avatar_url AS author_avatar_url
		FROM review r
		JOIN user_account u ON u.id = r.user_id
		WHERE r.id = $1
	`
	var review domain.Review
	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (r *ReviewRepository) ListByPlace(ctx context.Context, ref domain.PlaceRef, filter domain.ReviewListFilter) ([]domain.Review, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	const query = `
		SELECT
			r.id, r.title, r.description, r.rating, r.user_id, r.place_id,
			r.place_type, r.created_at, r.updated_at,
			u.nickname AS author_nickname,
			u.avatar_url AS author_avatar_url
		FROM review r
		JOIN user_account u ON u.id = r.user_id
		WHERE r.place_id = $1 AND r.place_type = $2
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryxContext(ctx, query, ref.ID, ref.Kind, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var review domain.Review
		if err := rows.StructScan(&review); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

// AggregateRating filters by both place_id and place_type; ids are generated
// per table, so a bare place_id match could silently fold in another table's
// reviews on collision.
func (r *ReviewRepository) AggregateRating(ctx context.Context, ref domain.PlaceRef) (*domain.RatingSummary, error) {
	const query = `
		SELECT
			COUNT(*)::int AS total_reviews,
			COALESCE(AVG(r.rating)::float8, 0) AS average_rating
		FROM review r
		WHERE r.place_id = $1 AND r.place_type = $2
	`
	var summary domain.RatingSummary
	if err := r.db.GetContext(ctx, &summary, query, ref.ID, ref.Kind); err != nil {
		return nil, err
	}
	return &summary, nil
}

var _ ports.ReviewRepository = (*ReviewRepository)(nil)
