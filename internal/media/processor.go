package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"mime"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	_ "golang.org/x/image/webp"
)

// DefaultMaxDimension caps the longer photo edge when no explicit limit is
// configured.
const DefaultMaxDimension = 3840

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Resized     bool
}

// Processor normalizes uploaded photos before they reach object storage.
type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// FFMPEGProcessor shells out to ffmpeg to downscale oversized photos. Images
// already within bounds pass through untouched.
type FFMPEGProcessor struct {
	path         string
	maxDimension int
}

func NewFFMPEGProcessor(binaryPath string, maxDimension int) *FFMPEGProcessor {
	path := strings.TrimSpace(binaryPath)
	if path == "" {
		path = "ffmpeg"
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &FFMPEGProcessor{path: path, maxDimension: maxDimension}
}

func (p *FFMPEGProcessor) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("media: empty reader")
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("media: empty image data")
	}

	contentType := normalizeContentType(upload.ContentType, upload.FileName)

	width, height, err := decodeDimensions(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("media: decode dimensions: %w", err)
	}

	limit := maxDimension
	if limit <= 0 {
		limit = p.maxDimension
	}
	if width <= limit && height <= limit {
		return &Result{Bytes: data, ContentType: contentType, Resized: false}, nil
	}

	targetW, targetH := scaleToFit(width, height, limit)
	resized, err := p.transcode(ctx, data, contentType, targetW, targetH)
	if err != nil {
		return nil, err
	}
	return &Result{Bytes: resized, ContentType: contentType, Resized: true}, nil
}

func decodeDimensions(r io.Reader) (int, int, error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return cfg.Width, cfg.Height, nil
}

// scaleToFit shrinks to the limit on the longer edge, preserving aspect
// ratio. Edges below 2px break some ffmpeg codecs, so both are floored there.
func scaleToFit(width, height, maxDim int) (int, int) {
	ratio := float64(maxDim) / float64(max(width, height))
	newW := int(math.Round(float64(width) * ratio))
	newH := int(math.Round(float64(height) * ratio))
	return max(newW, 2), max(newH, 2)
}

func (p *FFMPEGProcessor) transcode(ctx context.Context, data []byte, contentType string, width, height int) ([]byte, error) {
	codec, codecArgs, err := argsForContentType(contentType)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", "pipe:0",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", width, height),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", codec,
	}
	args = append(args, codecArgs...)
	args = append(args, "pipe:1")

	cmd := exec.CommandContext(ctx, p.path, args...)
	cmd.Stdin = bytes.NewReader(data)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg: produced empty output")
	}
	return stdout.Bytes(), nil
}

const (
	jpegQuality = 3
	pngLevel    = 4
	webpQuality = 85
)

func argsForContentType(contentType string) (string, []string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "mjpeg", []string{"-q:v", strconv.Itoa(jpegQuality)}, nil
	case "image/png":
		return "png", []string{"-compression_level", strconv.Itoa(pngLevel)}, nil
	case "image/webp":
		return "libwebp", []string{"-quality", strconv.Itoa(webpQuality)}, nil
	case "image/gif":
		// Animated sources collapse to their first frame.
		return "gif", nil, nil
	default:
		return "", nil, fmt.Errorf("media: unsupported content type %s", contentType)
	}
}

func normalizeContentType(value, fileName string) string {
	ct := strings.ToLower(strings.TrimSpace(value))
	if ct != "" {
		if ct == "image/jpg" {
			return "image/jpeg"
		}
		return ct
	}
	ext := strings.ToLower(strings.TrimSpace(filepath.Ext(fileName)))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	}
	if ext != "" {
		if mt := mime.TypeByExtension(ext); mt != "" {
			return strings.ToLower(mt)
		}
	}
	return "image/jpeg"
}
