package certificates

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/accounts"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/export"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/render"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/pdf"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Certificate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Certificate), args.Error(1)
}

func (m *MockRepository) ListByCertifier(ctx context.Context, certifierID string) ([]Certificate, error) {
	args := m.Called(ctx, certifierID)
	return args.Get(0).([]Certificate), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, certificate *Certificate) error {
	args := m.Called(ctx, certificate)
	return args.Error(0)
}

type MockCertifiers struct {
	mock.Mock
}

func (m *MockCertifiers) GetByID(ctx context.Context, id string) (*accounts.Certifier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Certifier), args.Error(1)
}

func (m *MockCertifiers) GetByName(ctx context.Context, name string) (*accounts.Certifier, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accounts.Certifier), args.Error(1)
}

func (m *MockCertifiers) Create(ctx context.Context, certifier *accounts.Certifier) error {
	return m.Called(ctx, certifier).Error(0)
}

func (m *MockCertifiers) SetVerifiedURL(ctx context.Context, id, url string, at time.Time) error {
	return m.Called(ctx, id, url, at).Error(0)
}

type MockSettings struct {
	mock.Mock
}

func (m *MockSettings) Load(ctx context.Context, location string) (settings.RenderSettings, error) {
	args := m.Called(ctx, location)
	return args.Get(0).(settings.RenderSettings), args.Error(1)
}

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, req render.Request) (*render.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.Result), args.Error(1)
}

type fixture struct {
	service    Service
	repo       *MockRepository
	certifiers *MockCertifiers
	settings   *MockSettings
	renderer   *MockRenderer
}

func newFixture() *fixture {
	f := &fixture{
		repo:       new(MockRepository),
		certifiers: new(MockCertifiers),
		settings:   new(MockSettings),
		renderer:   new(MockRenderer),
	}
	f.service = NewService(f.repo, f.certifiers, f.settings, f.renderer, zap.NewNop())
	return f
}

var alice = &accounts.Certifier{ID: "c1", Name: "alice", VerifiedURL: "https://alice.example"}

func TestCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.repo.On("Create", ctx, mock.AnythingOfType("*certificates.Certificate")).
		Run(func(args mock.Arguments) { args.Get(1).(*Certificate).ID = "x1" }).
		Return(nil)

	certificate, err := f.service.Create(ctx, "c1", CreateRequest{Name: " Bob ", Title: "Contributor"})
	require.NoError(t, err)
	assert.Equal(t, "x1", certificate.ID)
	assert.Equal(t, "Bob", certificate.Name)
	assert.Equal(t, "c1", certificate.CertifierID)
	assert.Empty(t, certificate.SettingsURL)

	f.repo.AssertExpectations(t)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, "c1", CreateRequest{Name: "Bob"})
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, "A field is missing in your request.", common.UserMessage(err, ""))

	_, err = f.service.Create(ctx, "c1", CreateRequest{Name: "Bob", Title: "Contributor", SettingsURL: "file:///etc/passwd"})
	assert.ErrorIs(t, err, common.ErrValidation)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGet(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, "x1").Return(&Certificate{ID: "x1", Name: "Bob", CertifierID: "c1"}, nil)
	f.repo.On("GetByID", ctx, "orphan").Return(&Certificate{ID: "orphan", CertifierID: "gone"}, nil)
	f.repo.On("GetByID", ctx, "missing").Return(nil, fmt.Errorf("certificates: %w", common.ErrNotFound))
	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.certifiers.On("GetByID", ctx, "gone").Return(nil, common.ErrNotFound)

	details, err := f.service.Get(ctx, "x1")
	require.NoError(t, err)
	assert.Equal(t, "Bob", details.Certificate.Name)
	assert.Equal(t, "alice", details.Certifier.Name)

	_, err = f.service.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, "ID was not found.", common.UserMessage(err, ""))

	_, err = f.service.Get(ctx, "orphan")
	assert.ErrorIs(t, err, common.ErrDataIntegrity)
	assert.Equal(t, "Certificate data is corrupt.", common.UserMessage(err, ""))
}

func TestRender(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	layout := settings.Default()
	layout.Font.Name = "Times"

	f.repo.On("GetByID", ctx, "x1").Return(&Certificate{
		ID: "x1", Name: "Bob", Title: "Contributor", CertifierID: "c1",
		SettingsURL: "https://alice.example/layout.json",
	}, nil)
	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.settings.On("Load", ctx, "https://alice.example/layout.json").Return(layout, nil)

	want := render.Request{
		Certificate:     render.CertificateData{Name: "Bob", Title: "Contributor"},
		Certifier:       render.CertifierData{Name: "alice"},
		Settings:        layout,
		VerificationURL: "https://certs.example.org/certificate/x1/view",
	}
	f.renderer.On("Render", ctx, want).Return(&render.Result{PDF: bytes.NewReader([]byte("%PDF-1.3"))}, nil)

	result, err := f.service.Render(ctx, "x1", "https://certs.example.org/")
	require.NoError(t, err)
	assert.Equal(t, 8, result.PDF.Len())

	f.renderer.AssertExpectations(t)
}

func TestRender_FetchFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, "remote").Return(&Certificate{ID: "remote", CertifierID: "c1", SettingsURL: "https://down.example/layout.json"}, nil)
	f.repo.On("GetByID", ctx, "local").Return(&Certificate{ID: "local", CertifierID: "c1"}, nil)
	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.settings.On("Load", ctx, "https://down.example/layout.json").
		Return(settings.RenderSettings{}, fmt.Errorf("%w: dial tcp", fetch.ErrUnreachable))
	f.settings.On("Load", ctx, "").Return(settings.Default(), nil)
	f.renderer.On("Render", ctx, mock.Anything).Return(nil, fmt.Errorf("template: %w", fetch.ErrTimeout))

	_, err := f.service.Render(ctx, "remote", "http://localhost:5000")
	assert.ErrorIs(t, err, fetch.ErrUnreachable)
	assert.Equal(t, "The layout settings of this certificate could not be fetched.", common.UserMessage(err, ""))

	_, err = f.service.Render(ctx, "local", "http://localhost:5000")
	assert.ErrorIs(t, err, fetch.ErrTimeout)
	assert.Equal(t, "The certificate template could not be fetched.", common.UserMessage(err, ""))
}

func TestRender_UndisplayableText(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, "x1").Return(&Certificate{ID: "x1", Name: "李雷", Title: "Contributor", CertifierID: "c1"}, nil)
	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.settings.On("Load", ctx, "").Return(settings.Default(), nil)
	f.renderer.On("Render", ctx, mock.Anything).
		Return(nil, fmt.Errorf("failed to render certificate: %w '李' in \"name\"", pdf.ErrMissingGlyph))

	_, err := f.service.Render(ctx, "x1", "http://localhost:5000")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, err, pdf.ErrMissingGlyph)
	assert.Equal(t, "The certificate text contains characters the font cannot display.", common.UserMessage(err, ""))
}

func TestExport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.certifiers.On("GetByID", ctx, "c1").Return(alice, nil)
	f.repo.On("ListByCertifier", ctx, "c1").Return([]Certificate{
		{ID: "x1", Name: "Bob", Title: "Contributor", CertifierID: "c1"},
		{ID: "x2", Name: "Carol", Title: "Maintainer", CertifierID: "c1"},
	}, nil)

	var buf bytes.Buffer
	require.NoError(t, f.service.Export(ctx, &buf, "c1", "https://certs.example.org", export.FormatCSV))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"x2", "Carol", "Maintainer", "alice", "https://certs.example.org/certificate/x2/view", ""}, records[2])
}

func TestViewURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000/certificate/abc/view", ViewURL("http://localhost:5000", "abc"))
	assert.Equal(t, "https://c.example/certificate/abc/download", DownloadURL("https://c.example/", "abc"))
}
