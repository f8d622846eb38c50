package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

type SavedPlaceRepository struct {
	db *sqlx.DB
}

func NewSavedPlaceRepo(db *sqlx.DB) *SavedPlaceRepository {
	return &SavedPlaceRepository{db: db}
}

func (r *SavedPlaceRepository) Add(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	// Re-adding an already saved place is a no-op, not a conflict.
	const query = `
		INSERT INTO saved_place (user_id, place_id, place_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, place_id, place_type) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, userID, ref.ID, ref.Kind)
	return err
}

func (r *SavedPlaceRepository) Remove(ctx context.Context, userID uuid.UUID, ref domain.PlaceRef) error {
	const query = `DELETE FROM saved_place WHERE user_id = $1 AND place_id = $2 AND place_type = $3`
	res, err := r.db.ExecContext(ctx, query, userID, ref.ID, ref.Kind)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Callers distinguish "was not saved" from success.
		return sql.ErrNoRows
	}
	return nil
}

func (r *SavedPlaceRepository) ListByUser(ctx context.Context, userID uuid.UUID, kind domain.PlaceKind) ([]domain.SavedPlace, error) {
	const query = `
		SELECT id, user_id, place_id, place_type, created_at
		FROM saved_place
		WHERE user_id = $1 AND place_type = $2
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, userID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []domain.SavedPlace
	for rows.Next() {
		var entry domain.SavedPlace
		if err := rows.StructScan(&entry); err != nil {
			return nil, err
		}
		saved = append(saved, entry)
	}
	return saved, rows.Err()
}

var _ ports.SavedPlaceRepository = (*SavedPlaceRepository)(nil)
