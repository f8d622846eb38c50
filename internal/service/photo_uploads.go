package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roamio-app/roamio-backend/internal/domain"
	"github.com/roamio-app/roamio-backend/internal/media"
	"github.com/roamio-app/roamio-backend/internal/repository/ports"
)

var ErrPhotoValidation = errors.New("photo validation failed")

const (
	defaultMaxPhotos     = 5
	defaultMaxPhotoBytes = int64(5 * 1024 * 1024)
)

var defaultAllowedMIMEs = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
	Alt         string
	Ordering    int
}

type PhotoUploaderConfig struct {
	Bucket           string
	MaxPhotos        int
	MaxPhotoBytes    int64
	AllowedMIMETypes []string
	Processor        media.Processor
	MaxDimension     int
}

// photoUploader validates, processes and stores photo uploads for every
// photo-carrying entity (places, reviews, avatars).
type photoUploader struct {
	storage      ports.ObjectStorage
	bucket       string
	maxPhotos    int
	maxBytes     int64
	allowedMIMEs map[string]struct{}
	processor    media.Processor
	maxDimension int
	now          func() time.Time
}

func newPhotoUploader(storage ports.ObjectStorage, cfg PhotoUploaderConfig) *photoUploader {
	maxPhotos := cfg.MaxPhotos
	if maxPhotos <= 0 {
		maxPhotos = defaultMaxPhotos
	}
	maxBytes := cfg.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxPhotoBytes
	}
	allowed := cfg.AllowedMIMETypes
	if len(allowed) == 0 {
		allowed = defaultAllowedMIMEs
	}
	mimeSet := make(map[string]struct{}, len(allowed))
	for _, mt := range allowed {
		mimeSet[strings.ToLower(strings.TrimSpace(mt))] = struct{}{}
	}
	maxDimension := cfg.MaxDimension
	if maxDimension <= 0 {
		maxDimension = media.DefaultMaxDimension
	}

	return &photoUploader{
		storage:      storage,
		bucket:       strings.TrimSpace(cfg.Bucket),
		maxPhotos:    maxPhotos,
		maxBytes:     maxBytes,
		allowedMIMEs: mimeSet,
		processor:    cfg.Processor,
		maxDimension: maxDimension,
		now:          time.Now,
	}
}

func (u *photoUploader) validate(uploads []PhotoUpload) error {
	if len(uploads) == 0 {
		return nil
	}
	if len(uploads) > u.maxPhotos {
		return fmt.Errorf("%w: maximum %d photos allowed", ErrPhotoValidation, u.maxPhotos)
	}
	for idx, upload := range uploads {
		if upload.Size <= 0 {
			return fmt.Errorf("%w: photo %d is empty", ErrPhotoValidation, idx+1)
		}
		if u.maxBytes > 0 && upload.Size > u.maxBytes {
			return fmt.Errorf("%w: photo %d exceeds size limit (%d bytes)", ErrPhotoValidation, idx+1, u.maxBytes)
		}
		contentType := strings.ToLower(strings.TrimSpace(upload.ContentType))
		if _, ok := u.allowedMIMEs[contentType]; !ok {
			return fmt.Errorf("%w: photo %d has unsupported content type %s", ErrPhotoValidation, idx+1, upload.ContentType)
		}
	}
	return nil
}

func (u *photoUploader) upload(ctx context.Context, imageType domain.PhotoType, ownerID, uploaderID uuid.UUID, uploads []PhotoUpload) ([]domain.Photo, error) {
	now := u.now()
	records := make([]domain.Photo, 0, len(uploads))

	for idx, upload := range uploads {
		ordering := upload.Ordering
		if ordering <= 0 {
			ordering = idx
		}
		ext := safeImageExtension(upload.ContentType, upload.FileName)
		objectKey := fmt.Sprintf("%s/%s/%s_%d%s",
			imageType, ownerID.String(), now.UTC().Format("20060102T150405Z0700"), idx, ext)

		reader, size, contentType, err := prepareImageForUpload(ctx, u.processor, media.Upload{
			Reader:      upload.Reader,
			Size:        upload.Size,
			FileName:    upload.FileName,
			ContentType: upload.ContentType,
		}, u.maxDimension)
		if err != nil {
			return nil, err
		}

		// The storage layer owns URL derivation; it already accounts for
		// the bucket segment and any configured public base.
		url, err := u.storage.Upload(ctx, u.bucket, objectKey, contentType, reader, size)
		if err != nil {
			return nil, err
		}

		records = append(records, domain.Photo{
			ImageAlt:   upload.Alt,
			ImageURL:   url,
			ObjectKey:  objectKey,
			ImageType:  imageType,
			OwnerID:    ownerID,
			UploaderID: uploaderID,
			Ordering:   ordering,
		})
	}
	return records, nil
}
