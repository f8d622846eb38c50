package http

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/roamio-app/roamio-backend/internal/service"
)

// buildPhotoUploads collects file parts from a multipart form under the given
// field names ("photos" and "photos[]" style aliases). Callers own the
// returned closers.
func buildPhotoUploads(form *multipart.Form, fields ...string) ([]service.PhotoUpload, []io.ReadCloser, error) {
	if form == nil {
		return nil, nil, nil
	}

	var headers []*multipart.FileHeader
	for _, field := range fields {
		headers = append(headers, form.File[field]...)
		headers = append(headers, form.File[field+"[]"]...)
	}

	uploads := make([]service.PhotoUpload, 0, len(headers))
	closers := make([]io.ReadCloser, 0, len(headers))
	for idx, header := range headers {
		file, err := header.Open()
		if err != nil {
			for _, closer := range closers {
				_ = closer.Close()
			}
			return nil, nil, err
		}
		closers = append(closers, file)
		uploads = append(uploads, service.PhotoUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Ordering:    idx,
		})
	}
	return uploads, closers, nil
}

func closeAll(closers []io.ReadCloser) {
	for _, closer := range closers {
		_ = closer.Close()
	}
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
