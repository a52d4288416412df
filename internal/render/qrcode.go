package render

import (
	"fmt"
	"image"
	"image/color"

	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"
)

const (
	minQRVersion = 4
	maxQRVersion = 40

	// one pixel per point on a landscape A4 page
	maxQRSide = 842
)

// newQRCode encodes content at version 4 or the smallest larger version that
// fits, with medium error correction and the standard 4 module quiet zone.
func newQRCode(content string) (*qrcode.QRCode, error) {
	var lastErr error
	for v := minQRVersion; v <= maxQRVersion; v++ {
		q, err := qrcode.NewWithForcedVersion(content, v, qrcode.Medium)
		if err == nil {
			q.ForegroundColor = color.Black
			q.BackgroundColor = color.White
			return q, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("failed to encode qr code: %w", lastErr)
}

// qrImage renders content as a black-on-white PNG of exactly width x height pixels.
func qrImage(content string, width, height int) ([]byte, error) {
	if width < 1 || height < 1 || width > maxQRSide || height > maxQRSide {
		return nil, fmt.Errorf("qr code size %dx%d not in 1..%d", width, height, maxQRSide)
	}
	q, err := newQRCode(content)
	if err != nil {
		return nil, err
	}

	src := q.Image(-1)
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return encodePNG(dst)
}
