package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

type PhotoRepository struct {
	db *sqlx.DB
}

func NewPhotoRepo(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) CreateMany(ctx context.Context, photos []domain.Photo) error {
	if len(photos) == 0 {
		return nil
	}
	const query = `
		INSERT INTO photo (image_alt, image_url, object_key, image_type, owner_id, uploader_id, ordering)
		VALUES (:image_alt, :image_url, :object_key, :image_type, :owner_id, :uploader_id, :ordering)
	`
	for _, photo := range photos {
		args := map[string]any{
			"image_alt":   photo.ImageAlt,
			"image_url":   photo.ImageURL,
			"object_key":  photo.ObjectKey,
			"image_type":  photo.ImageType,
			"owner_id":    photo.OwnerID,
			"uploader_id": photo.UploaderID,
			"ordering":    photo.Ordering,
		}
		if _, err := r.db.NamedExecContext(ctx, query, args); err != nil {
			return err
		}
	}
	return nil
}

func (r *PhotoRepository) ListByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) ([]domain.Photo, error) {
	const query = `
		SELECT id, image_alt, image_url, object_key, image_type, owner_id, uploader_id, ordering, created_at
		FROM photo
		WHERE image_type = $1 AND owner_id = $2
		ORDER BY ordering ASC, created_at ASC
	`
	rows, err := r.db.QueryxContext(ctx, query, imageType, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var photo domain.Photo
		if err := rows.StructScan(&photo); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *PhotoRepository) ListByOwners(ctx context.Context, imageType domain.PhotoType, ownerIDs []uuid.UUID) (map[uuid.UUID][]domain.Photo, error) {
	result := make(map[uuid.UUID][]domain.Photo)
	if len(ownerIDs) == 0 {
		return result, nil
	}

	query, args, err := sqlx.In(`
		SELECT id, image_alt, image_url, object_key, image_type, owner_id, uploader_id, ordering, created_at
		FROM photo
		WHERE image_type = ? AND owner_id IN (?)
		ORDER BY ordering ASC, created_at ASC
	`, imageType, ownerIDs)
	if err != nil {
		return nil, err
	}
	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var photo domain.Photo
		if err := rows.StructScan(&photo); err != nil {
			return nil, err
		}
		result[photo.OwnerID] = append(result[photo.OwnerID], photo)
	}
	return result, rows.Err()
}

func (r *PhotoRepository) DeleteByOwner(ctx context.Context, imageType domain.PhotoType, ownerID uuid.UUID) error {
	const query = `DELETE FROM photo WHERE image_type = $1 AND owner_id = $2`
	_, err := r.db.ExecContext(ctx, query, imageType, ownerID)
	return err
}

var _ ports.PhotoRepository = (*PhotoRepository)(nil)
