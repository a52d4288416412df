package v1

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/accounts"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/auth"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/certificates"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/config"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/render"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/settings"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/store"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/verification"
	"certificate-automation/certifier-portal/certifier-portal-backend/pkg/storage"
)

// Dependencies are the long-lived collaborators the portal is built from
type Dependencies struct {
	Config *config.Config
	Store  store.DocumentStore
	// S3 is optional; s3:// template sources fail without it.
	S3     storage.S3Client
	Logger *zap.Logger
}

// PortalAPI holds the portal handlers and services
type PortalAPI struct {
	AccountsHandler     *accounts.Handler
	CertificatesHandler *certificates.Handler
	SettingsHandler     *settings.Handler

	Accounts     accounts.Service
	Certificates certificates.Service
	Sessions     *auth.Sessions
}

// SetupPortalAPI wires repositories, services and handlers together
func SetupPortalAPI(deps Dependencies) (*PortalAPI, error) {
	cfg := deps.Config
	logger := deps.Logger
	if cfg.Security.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	// Outbound HTTP
	templateClient := fetch.NewClient(cfg.Renderer.FetchTimeout, logger.Named("fetch"))
	verifyClient := fetch.NewClient(cfg.Verification.Timeout, logger.Named("fetch"))

	// Repositories
	certifierRepo := accounts.NewRepository(deps.Store)
	certificateRepo := certificates.NewRepository(deps.Store)

	// Services
	verifier := verification.NewVerifier(verifyClient, logger.Named("verification"))
	accountService := accounts.NewService(certifierRepo, verifier, accounts.TagConfig{
		Name:          cfg.Verification.TagName,
		ContentPrefix: cfg.Verification.ContentPrefix,
	}, logger.Named("accounts"))

	layouts := settings.NewService(settings.NewRepository(templateClient), logger.Named("settings"))
	templates := render.NewTemplateLoader(cfg.Renderer.AssetsDir, templateClient, deps.S3)
	renderer := render.NewRenderer(cfg.Renderer.AssetsDir, templates, logger.Named("render"))
	certificateService := certificates.NewService(certificateRepo, certifierRepo, layouts, renderer, logger.Named("certificates"))

	// Handlers
	secure := strings.HasPrefix(cfg.Server.PublicURL, "https://")
	sessions := auth.NewSessions([]byte(cfg.Security.JWTSecret), cfg.Security.SessionTTL, secure, logger.Named("auth"))

	return &PortalAPI{
		AccountsHandler:     accounts.NewHandler(accountService, sessions, logger),
		CertificatesHandler: certificates.NewHandler(certificateService, accountService, sessions, cfg.Server.PublicURL, logger),
		SettingsHandler:     settings.NewHandler(),
		Accounts:            accountService,
		Certificates:        certificateService,
		Sessions:            sessions,
	}, nil
}

// RegisterPortalRoutes registers every portal route on the router group
func RegisterPortalRoutes(router *gin.RouterGroup, api *PortalAPI) {
	api.AccountsHandler.RegisterRoutes(router)
	api.CertificatesHandler.RegisterRoutes(router)
	api.SettingsHandler.RegisterRoutes(router)
}
