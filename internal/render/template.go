package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/storage"
)

// Template raster size, one pixel per point of the landscape A4 page.
const (
	TemplateWidthPx  = 841
	TemplateHeightPx = 595
)

var ErrInvalidTemplate = errors.New("invalid template image")

// TemplateLoader reads template images from the web, from S3 or from the
// assets directory.
type TemplateLoader struct {
	assetsDir string
	client    *fetch.Client
	s3        storage.S3Client
}

// NewTemplateLoader creates a loader. s3 may be nil when no bucket is configured.
func NewTemplateLoader(assetsDir string, client *fetch.Client, s3 storage.S3Client) *TemplateLoader {
	return &TemplateLoader{assetsDir: assetsDir, client: client, s3: s3}
}

// Load returns the raw bytes of the template at source.
func (l *TemplateLoader) Load(ctx context.Context, source string) ([]byte, error) {
	switch {
	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		resp, err := l.client.GetOK(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch template: %w", err)
		}
		return resp.Body, nil

	case strings.HasPrefix(source, "s3://"):
		bucket, key, ok := storage.ParseS3URL(source)
		if !ok {
			return nil, fmt.Errorf("%w: malformed location %q", ErrInvalidTemplate, source)
		}
		if l.s3 == nil {
			return nil, fmt.Errorf("template storage for %q: %w", source, common.ErrNotConfigured)
		}
		body, err := l.s3.Download(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		return io.ReadAll(body)

	default:
		// Clean against the root so settings cannot reach outside the assets dir.
		path := filepath.Join(l.assetsDir, filepath.Clean("/"+source))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read template: %w", err)
		}
		return data, nil
	}
}

// scaleTemplate decodes a template and stretches it to the page raster,
// returning PNG bytes.
func scaleTemplate(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	dst := image.NewRGBA(image.Rect(0, 0, TemplateWidthPx, TemplateHeightPx))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return encodePNG(dst)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}
