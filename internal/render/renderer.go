// Package render composes certificate PDFs from a template image, the
// certificate texts and a QR code pointing back at the online view.
package render

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

// Request describes one certificate to render. A zero Settings value means
// the default layout.
type Request struct {
	Certificate     CertificateData
	Certifier       CertifierData
	Settings        settings.RenderSettings
	VerificationURL string
}

type Renderer struct {
	templates *TemplateLoader
	fonts     *fontLoader
	logger    *zap.Logger
}

func NewRenderer(assetsDir string, templates *TemplateLoader, logger *zap.Logger) *Renderer {
	return &Renderer{
		templates: templates,
		fonts:     &fontLoader{assetsDir: assetsDir, logger: logger},
		logger:    logger,
	}
}

// NewBuilder starts a certificate drawn with s.
func (r *Renderer) NewBuilder(s settings.RenderSettings) *Builder {
	return &Builder{
		settings:  s,
		canvas:    pdf.NewCanvas(pdf.Options{Title: "Certificate", Creator: "certifier-portal"}),
		templates: r.templates,
		fonts:     r.fonts,
	}
}

// Render draws the template, the texts and the QR code, in that order.
func (r *Renderer) Render(ctx context.Context, req Request) (*Result, error) {
	s := req.Settings
	if s == (settings.RenderSettings{}) {
		s = settings.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", err)
	}

	start := time.Now()
	result, err := r.NewBuilder(s).
		DrawTemplate(ctx).
		AddCertificateData(req.Certificate, req.Certifier).
		AddQRCode(req.VerificationURL).
		Save()
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Certificate rendered",
		zap.String("template", s.Template),
		zap.Int("size", result.PDF.Len()),
		zap.Duration("duration", time.Since(start)))
	return result, nil
}
