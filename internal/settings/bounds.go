package settings

import (
	"errors"
	"fmt"

	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

// MaxFontSize is the largest font size a layout may ask for, in points.
const MaxFontSize = 200

// ErrOutOfBounds marks a layout that places something outside the page.
var ErrOutOfBounds = errors.New("layout outside the page")

// Validate checks that every placement lies on the landscape A4 page and that
// the QR code and font have usable sizes.
func (s RenderSettings) Validate() error {
	if s.Font.Size <= 0 || s.Font.Size > MaxFontSize {
		return fmt.Errorf("%w: font size %d not in 1..%d", ErrOutOfBounds, s.Font.Size, MaxFontSize)
	}

	q := s.QRCode
	if !onPage(q.Left, q.Bottom) {
		return fmt.Errorf("%w: qrcode corner (%d, %d)", ErrOutOfBounds, q.Left, q.Bottom)
	}
	// each term is at most a page side, so the sums cannot overflow
	if q.Width <= 0 || q.Height <= 0 ||
		float64(q.Left)+float64(q.Width) > pdf.PageWidth ||
		float64(q.Bottom)+float64(q.Height) > pdf.PageHeight {
		return fmt.Errorf("%w: qrcode %dx%d at (%d, %d)", ErrOutOfBounds, q.Width, q.Height, q.Left, q.Bottom)
	}

	for _, a := range []struct {
		name   string
		anchor Anchor
	}{
		{"name", s.Name},
		{"title", s.Title},
		{"certifier", s.Certifier},
	} {
		if !onPage(a.anchor.Left, a.anchor.Bottom) {
			return fmt.Errorf("%w: %s anchor (%d, %d)", ErrOutOfBounds, a.name, a.anchor.Left, a.anchor.Bottom)
		}
	}
	return nil
}

func onPage(left, bottom int) bool {
	return left >= 0 && bottom >= 0 &&
		float64(left) <= pdf.PageWidth && float64(bottom) <= pdf.PageHeight
}
