package certificates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/accounts"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/export"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/render"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

// SettingsLoader resolves the render settings stored at a location.
type SettingsLoader interface {
	Load(ctx context.Context, location string) (settings.RenderSettings, error)
}

// Renderer produces certificate PDFs.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (*render.Result, error)
}

type Service interface {
	Create(ctx context.Context, certifierID string, req CreateRequest) (*Certificate, error)
	Get(ctx context.Context, id string) (*Details, error)
	// Render draws the certificate with a QR code pointing at baseURL's view page.
	Render(ctx context.Context, id, baseURL string) (*render.Result, error)
	ListByCertifier(ctx context.Context, certifierID string) ([]Certificate, error)
	Export(ctx context.Context, w io.Writer, certifierID, baseURL string, format export.Format) error
}

type certificateService struct {
	repo       Repository
	certifiers accounts.Repository
	settings   SettingsLoader
	renderer   Renderer
	logger     *zap.Logger
}

func NewService(repo Repository, certifiers accounts.Repository, layouts SettingsLoader, renderer Renderer, logger *zap.Logger) Service {
	return &certificateService{
		repo:       repo,
		certifiers: certifiers,
		settings:   layouts,
		renderer:   renderer,
		logger:     logger,
	}
}

// ViewURL is the public page of a certificate.
func ViewURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/certificate/" + id + "/view"
}

// DownloadURL is where the PDF of a certificate is served.
func DownloadURL(baseURL, id string) string {
	return strings.TrimRight(baseURL, "/") + "/certificate/" + id + "/download"
}

func (s *certificateService) Create(ctx context.Context, certifierID string, req CreateRequest) (*Certificate, error) {
	name := strings.TrimSpace(req.Name)
	title := strings.TrimSpace(req.Title)
	if name == "" || title == "" {
		return nil, common.NewError(common.ErrValidation, "A field is missing in your request.")
	}

	settingsURL := strings.TrimSpace(req.SettingsURL)
	if settingsURL != "" {
		if _, err := fetch.ValidateURL(settingsURL); err != nil {
			return nil, common.NewError(common.ErrValidation, "Settings URL must be an absolute http or https address.")
		}
	}

	if _, err := s.certifiers.GetByID(ctx, certifierID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, "Account was not found.")
		}
		return nil, fmt.Errorf("failed to look up certifier: %w", err)
	}

	certificate := &Certificate{
		Name:        name,
		Title:       title,
		CertifierID: certifierID,
		SettingsURL: settingsURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, certificate); err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	s.logger.Info("Certificate created",
		zap.String("certificate_id", certificate.ID),
		zap.String("certifier_id", certifierID))
	return certificate, nil
}

func (s *certificateService) Get(ctx context.Context, id string) (*Details, error) {
	certificate, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NewError(common.ErrNotFound, "ID was not found.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	certifier, err := s.certifiers.GetByID(ctx, certificate.CertifierID)
	if errors.Is(err, common.ErrNotFound) {
		s.logger.Error("Certificate references a missing certifier",
			zap.String("certificate_id", id),
			zap.String("certifier_id", certificate.CertifierID))
		return nil, common.NewError(common.ErrDataIntegrity, "Certificate data is corrupt.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get certifier: %w", err)
	}

	return &Details{Certificate: certificate, Certifier: certifier}, nil
}

func (s *certificateService) Render(ctx context.Context, id, baseURL string) (*render.Result, error) {
	details, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	layout, err := s.settings.Load(ctx, details.Certificate.SettingsURL)
	if err != nil {
		return nil, &common.Error{Kind: err, Message: "The layout settings of this certificate could not be fetched."}
	}

	result, err := s.renderer.Render(ctx, render.Request{
		Certificate:     render.CertificateData{Name: details.Certificate.Name, Title: details.Certificate.Title},
		Certifier:       render.CertifierData{Name: details.Certifier.Name},
		Settings:        layout,
		VerificationURL: ViewURL(baseURL, id),
	})
	if err != nil {
		if fetch.IsFetchError(err) {
			return nil, &common.Error{Kind: err, Message: "The certificate template could not be fetched."}
		}
		if errors.Is(err, pdf.ErrMissingGlyph) {
			return nil, &common.Error{
				Kind:    fmt.Errorf("%w: %w", common.ErrValidation, err),
				Message: "The certificate text contains characters the font cannot display.",
			}
		}
		return nil, err
	}
	return result, nil
}

func (s *certificateService) ListByCertifier(ctx context.Context, certifierID string) ([]Certificate, error) {
	list, err := s.repo.ListByCertifier(ctx, certifierID)
	if err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return list, nil
}

func (s *certificateService) Export(ctx context.Context, w io.Writer, certifierID, baseURL string, format export.Format) error {
	certifier, err := s.certifiers.GetByID(ctx, certifierID)
	if err != nil {
		return fmt.Errorf("failed to get certifier: %w", err)
	}
	list, err := s.ListByCertifier(ctx, certifierID)
	if err != nil {
		return err
	}

	rows := make([]export.CertificateRow, 0, len(list))
	for _, c := range list {
		rows = append(rows, export.CertificateRow{
			ID:        c.ID,
			Name:      c.Name,
			Title:     c.Title,
			Certifier: certifier.Name,
			ViewURL:   ViewURL(baseURL, c.ID),
			IssuedAt:  c.CreatedAt,
		})
	}
	return export.Write(w, format, rows)
}
