package render

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

// Element names in the drawn document
const (
	ElementTemplate  = "template"
	ElementName      = "name"
	ElementTitle     = "title"
	ElementCertifier = "certifier"
	ElementQRCode    = "qrcode"
)

// CertificateData is what gets printed about the recipient.
type CertificateData struct {
	Name  string
	Title string
}

// CertifierData is what gets printed about the issuer.
type CertifierData struct {
	Name string
}

// Result is a finished certificate.
type Result struct {
	PDF      *bytes.Reader
	Elements []pdf.Element
	Settings settings.RenderSettings
}

// Builder draws one certificate. Steps are meant to run in the order
// DrawTemplate, AddCertificateData, AddQRCode, Save. The first failing step
// makes every later step a no-op and its error is returned by Save.
type Builder struct {
	settings  settings.RenderSettings
	canvas    *pdf.Canvas
	templates *TemplateLoader
	fonts     *fontLoader
	err       error
}

// DrawTemplate loads the template image and stretches it over the whole page.
func (b *Builder) DrawTemplate(ctx context.Context) *Builder {
	if b.err != nil {
		return b
	}

	raw, err := b.templates.Load(ctx, b.settings.Template)
	if err != nil {
		b.err = err
		return b
	}
	scaled, err := scaleTemplate(raw)
	if err != nil {
		b.err = err
		return b
	}

	b.err = b.canvas.DrawImage(ElementTemplate, bytes.NewReader(scaled), 0, 0, pdf.PageWidth, pdf.PageHeight)
	return b
}

// AddCertificateData writes the recipient name, the title and the certifier
// name. A text the configured font cannot display is drawn with the bundled
// fallback font instead.
func (b *Builder) AddCertificateData(cert CertificateData, certifier CertifierData) *Builder {
	if b.err != nil {
		return b
	}

	face := b.fonts.face(b.settings.Font.Name)
	size := float64(b.settings.Font.Size)
	if err := b.canvas.SetFont(face, size); err != nil {
		b.err = err
		return b
	}

	texts := []struct {
		name   string
		anchor settings.Anchor
		text   string
	}{
		{ElementName, b.settings.Name, cert.Name},
		{ElementTitle, b.settings.Title, cert.Title},
		{ElementCertifier, b.settings.Certifier, certifier.Name},
	}
	for _, t := range texts {
		if err := b.drawText(face, size, t.name, t.anchor, t.text); err != nil {
			b.err = err
			return b
		}
	}
	return b
}

func (b *Builder) drawText(face pdf.FontFace, size float64, name string, anchor settings.Anchor, text string) error {
	left, bottom := float64(anchor.Left), float64(anchor.Bottom)

	r, missing := b.canvas.Unsupported(text)
	if !missing || sameFace(face, fallbackFace) {
		return b.canvas.DrawText(name, left, bottom, text)
	}

	b.fonts.logger.Warn("Font cannot display text, using bundled font",
		zap.String("element", name),
		zap.String("font", face.Family),
		zap.String("character", string(r)))
	if err := b.canvas.SetFont(fallbackFace, size); err != nil {
		return err
	}
	if err := b.canvas.DrawText(name, left, bottom, text); err != nil {
		return err
	}
	return b.canvas.SetFont(face, size)
}

// AddQRCode draws a QR code linking to verificationURL.
func (b *Builder) AddQRCode(verificationURL string) *Builder {
	if b.err != nil {
		return b
	}

	box := b.settings.QRCode
	img, err := qrImage(verificationURL, box.Width, box.Height)
	if err != nil {
		b.err = err
		return b
	}

	b.err = b.canvas.DrawImage(ElementQRCode, bytes.NewReader(img),
		float64(box.Left), float64(box.Bottom), float64(box.Width), float64(box.Height))
	return b
}

// Save finalizes the document.
func (b *Builder) Save() (*Result, error) {
	if b.err != nil {
		return nil, fmt.Errorf("failed to render certificate: %w", b.err)
	}

	out, err := b.canvas.Output()
	if err != nil {
		return nil, err
	}
	return &Result{
		PDF:      out,
		Elements: b.canvas.Elements(),
		Settings: b.settings,
	}, nil
}
