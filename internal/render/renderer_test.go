package render

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/font/gofont/gomedium"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

func templatePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 45))
	for x := 0; x < 64; x++ {
		for y := 0; y < 45; y++ {
			img.Set(x, y, color.RGBA{R: 240, G: 230, B: uint8(x * 4), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestRenderer(t *testing.T, s3 fakeS3) *Renderer {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "static"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, settings.DefaultTemplate), templatePNG(t), 0o644))

	client := fetch.NewClient(time.Second, zap.NewNop())
	var loader *TemplateLoader
	if s3 != nil {
		loader = NewTemplateLoader(dir, client, s3)
	} else {
		loader = NewTemplateLoader(dir, client, nil)
	}
	return NewRenderer(dir, loader, zap.NewNop())
}

type fakeS3 map[string][]byte

func (f fakeS3) Download(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	data, ok := f[bucket+"/"+key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func sampleRequest() Request {
	return Request{
		Certificate:     CertificateData{Name: "Ada", Title: "Engineer"},
		Certifier:       CertifierData{Name: "Grace"},
		VerificationURL: "https://certs.example.org/certificate/64b7f0c2a1b2c3d4e5f60718/view",
	}
}

func byName(elements []pdf.Element) map[string]pdf.Element {
	out := make(map[string]pdf.Element)
	for _, e := range elements {
		out[e.Name] = e
	}
	return out
}

func TestRender_DefaultLayout(t *testing.T) {
	r := newTestRenderer(t, nil)

	result, err := r.Render(context.Background(), sampleRequest())
	require.NoError(t, err)

	images := 0
	for _, e := range result.Elements {
		if e.Kind == pdf.KindImage {
			images++
		}
	}
	assert.Equal(t, 2, images)
	require.Len(t, result.Elements, 5)

	order := make([]string, 0, len(result.Elements))
	for _, e := range result.Elements {
		order = append(order, e.Name)
	}
	assert.Equal(t, []string{ElementTemplate, ElementName, ElementTitle, ElementCertifier, ElementQRCode}, order)

	els := byName(result.Elements)
	assert.Equal(t, [2]float64{390, 320}, [2]float64{els[ElementName].Left, els[ElementName].Bottom})
	assert.Equal(t, [2]float64{322, 245}, [2]float64{els[ElementTitle].Left, els[ElementTitle].Bottom})
	assert.Equal(t, [2]float64{377, 100}, [2]float64{els[ElementCertifier].Left, els[ElementCertifier].Bottom})
	assert.Equal(t, "Ada", els[ElementName].Text)
	assert.Equal(t, "Engineer", els[ElementTitle].Text)
	assert.Equal(t, "Grace", els[ElementCertifier].Text)
	assert.Equal(t, 32.0, els[ElementName].Size)

	qr := els[ElementQRCode]
	assert.Equal(t, [4]float64{600, 100, 125, 125}, [4]float64{qr.Left, qr.Bottom, qr.Width, qr.Height})

	bg := els[ElementTemplate]
	assert.Equal(t, [4]float64{0, 0, pdf.PageWidth, pdf.PageHeight}, [4]float64{bg.Left, bg.Bottom, bg.Width, bg.Height})

	data, err := io.ReadAll(result.PDF)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRender_MalformedSettingsMatchDefault(t *testing.T) {
	r := newTestRenderer(t, nil)

	malformed := `{"template": "static/template.png", "font": {"name": "Times", "size": 12},
		"name": {"left": 1, "bottom": 1}, "title": {"left": 2, "bottom": 2}, "certifier": {"left": 3, "bottom": 3}}`
	parsed, ok := settings.Parse([]byte(malformed))
	require.False(t, ok)

	req := sampleRequest()
	plain, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	req.Settings = parsed
	fallback, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	anchors := func(elements []pdf.Element) [][4]float64 {
		var out [][4]float64
		for _, e := range elements {
			out = append(out, [4]float64{e.Left, e.Bottom, e.Width, e.Height})
		}
		return out
	}
	assert.Equal(t, anchors(plain.Elements), anchors(fallback.Elements))
}

func TestRender_CustomLayout(t *testing.T) {
	r := newTestRenderer(t, nil)

	s := settings.Default()
	s.Font = settings.Font{Name: "Times Bold", Size: 20}
	s.QRCode = settings.Box{Left: 20, Bottom: 20, Width: 80, Height: 60}
	s.Name = settings.Anchor{Left: 100, Bottom: 400}

	req := sampleRequest()
	req.Settings = s
	result, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	els := byName(result.Elements)
	assert.Equal(t, "Times", els[ElementName].Font)
	assert.Equal(t, 20.0, els[ElementName].Size)
	assert.Equal(t, 100.0, els[ElementName].Left)
	assert.Equal(t, 80.0, els[ElementQRCode].Width)
	assert.Equal(t, 60.0, els[ElementQRCode].Height)
}

func TestRender_FontFallback(t *testing.T) {
	r := newTestRenderer(t, nil)

	s := settings.Default()
	s.Font.Name = "Comic Sans"
	req := sampleRequest()
	req.Settings = s

	result, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	// Poppins is not in the test assets dir, so the bundled face is used.
	assert.Equal(t, "Go", byName(result.Elements)[ElementName].Font)
}

func TestRender_DefaultFontFromAssets(t *testing.T) {
	r := newTestRenderer(t, nil)
	fontPath := filepath.Join(r.fonts.assetsDir, "static", "Poppins-Bold.ttf")
	require.NoError(t, os.WriteFile(fontPath, gomedium.TTF, 0o644))

	req := sampleRequest()
	req.Certificate.Name = "Łukasz Żółć"
	result, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	els := byName(result.Elements)
	for _, name := range []string{ElementName, ElementTitle, ElementCertifier} {
		assert.Equal(t, "Poppins", els[name].Font, name)
	}
	assert.Equal(t, "Łukasz Żółć", els[ElementName].Text)
}

func TestRender_NonLatinText(t *testing.T) {
	r := newTestRenderer(t, nil)

	req := sampleRequest()
	req.Certificate = CertificateData{Name: "Łukasz Żółć", Title: "Ōta Ñoño"}
	result, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	els := byName(result.Elements)
	assert.Equal(t, "Łukasz Żółć", els[ElementName].Text)
	assert.Equal(t, "Ōta Ñoño", els[ElementTitle].Text)
	assert.Equal(t, "Go", els[ElementName].Font)
	assert.Greater(t, els[ElementName].Width, 0.0)
}

func TestRender_CoreFontFallsBackPerText(t *testing.T) {
	r := newTestRenderer(t, nil)

	s := settings.Default()
	s.Font.Name = "Helvetica Bold"
	req := sampleRequest()
	req.Settings = s
	req.Certificate = CertificateData{Name: "Łukasz Żółć", Title: "Zoë"}

	result, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	els := byName(result.Elements)
	assert.Equal(t, "Go", els[ElementName].Font)
	assert.Equal(t, "Helvetica", els[ElementTitle].Font)
	assert.Equal(t, "Helvetica", els[ElementCertifier].Font)
}

func TestRender_TextWithoutGlyphs(t *testing.T) {
	r := newTestRenderer(t, nil)

	req := sampleRequest()
	req.Certificate.Name = "李雷"
	_, err := r.Render(context.Background(), req)
	assert.ErrorIs(t, err, pdf.ErrMissingGlyph)
}

func TestRender_RejectsOffPageLayout(t *testing.T) {
	r := newTestRenderer(t, nil)

	s := settings.Default()
	s.QRCode.Width, s.QRCode.Height = 4000000000, 4000000000
	req := sampleRequest()
	req.Settings = s

	_, err := r.Render(context.Background(), req)
	assert.ErrorIs(t, err, settings.ErrOutOfBounds)
}

func TestRender_RemoteTemplate(t *testing.T) {
	body := templatePNG(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/template.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	r := newTestRenderer(t, nil)
	req := sampleRequest()

	s := settings.Default()
	s.Template = srv.URL + "/template.png"
	req.Settings = s
	_, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	s.Template = srv.URL + "/missing.png"
	req.Settings = s
	_, err = r.Render(context.Background(), req)
	assert.ErrorIs(t, err, fetch.ErrUnexpectedStatus)
}

func TestRender_UnreachableTemplate(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	r := newTestRenderer(t, nil)
	req := sampleRequest()
	s := settings.Default()
	s.Template = addr + "/template.png"
	req.Settings = s

	_, err := r.Render(context.Background(), req)
	assert.ErrorIs(t, err, fetch.ErrUnreachable)
	assert.True(t, fetch.IsFetchError(err))
}

func TestRender_LocalTemplateErrors(t *testing.T) {
	r := newTestRenderer(t, nil)
	req := sampleRequest()

	s := settings.Default()
	s.Template = "static/absent.png"
	req.Settings = s
	_, err := r.Render(context.Background(), req)
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(filepath.Join(r.fonts.assetsDir, "static", "notes.txt"), []byte("not an image"), 0o644))
	s.Template = "static/notes.txt"
	req.Settings = s
	_, err = r.Render(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidTemplate)
}

func TestRender_S3Template(t *testing.T) {
	r := newTestRenderer(t, fakeS3{"templates/acme.png": templatePNG(t)})
	req := sampleRequest()

	s := settings.Default()
	s.Template = "s3://templates/acme.png"
	req.Settings = s
	_, err := r.Render(context.Background(), req)
	require.NoError(t, err)

	unconfigured := newTestRenderer(t, nil)
	_, err = unconfigured.Render(context.Background(), req)
	assert.ErrorIs(t, err, common.ErrNotConfigured)
}

func TestQRImage(t *testing.T) {
	data, err := qrImage("https://certs.example.org/certificate/1/view", 125, 90)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 125, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())

	// quiet zone is white
	r, g, b, _ := img.At(0, 0).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})

	_, err = qrImage("x", 0, 10)
	assert.Error(t, err)

	_, err = qrImage("x", 4000000000, 4000000000)
	assert.Error(t, err)
	_, err = qrImage("x", 60000, 60000)
	assert.Error(t, err)
}

func TestNewQRCode_Version(t *testing.T) {
	short, err := newQRCode("https://a.example/c/1")
	require.NoError(t, err)
	assert.Equal(t, minQRVersion, short.VersionNumber)

	long, err := newQRCode("https://certs.example.org/certificate/" + strings.Repeat("a", 200) + "/view")
	require.NoError(t, err)
	assert.Greater(t, long.VersionNumber, minQRVersion)
}
