package certificates

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/accounts"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/auth"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/export"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/web"
)

// Handler serves certificate pages and downloads
type Handler struct {
	service    Service
	certifiers accounts.Service
	sessions   *auth.Sessions
	publicURL  string
	logger     *zap.Logger
}

// NewHandler creates a certificate handler. publicURL is the base used in QR
// codes and links; when empty it is derived from each request.
func NewHandler(service Service, certifiers accounts.Service, sessions *auth.Sessions, publicURL string, logger *zap.Logger) *Handler {
	return &Handler{
		service:    service,
		certifiers: certifiers,
		sessions:   sessions,
		publicURL:  publicURL,
		logger:     logger,
	}
}

// RegisterRoutes registers certificate routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	certificates := router.Group("/certificate")
	{
		certificates.GET("/:id/view", h.view)
		certificates.GET("/:id/download", h.download)

		private := certificates.Group("", h.sessions.RequireCertifier())
		private.GET("/create", h.createPage)
		private.POST("/create", h.create)
		private.GET("/list", h.list)
		private.GET("/export", h.export)
	}
}

func (h *Handler) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil || strings.EqualFold(c.GetHeader("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func (h *Handler) createPage(c *gin.Context) {
	certifier, err := h.certifiers.Get(c.Request.Context(), auth.CertifierID(c))
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}
	c.HTML(http.StatusOK, "create-certificate.html", gin.H{
		"Title":     "Create certificate",
		"Certifier": certifier.Name,
	})
}

func (h *Handler) create(c *gin.Context) {
	certificate, err := h.service.Create(c.Request.Context(), auth.CertifierID(c), CreateRequest{
		Name:        c.PostForm("name"),
		Title:       c.PostForm("title"),
		SettingsURL: c.PostForm("settings_url"),
	})
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	web.Success(c,
		fmt.Sprintf("Certificate with the id %s created successfully", certificate.ID),
		ViewURL(h.baseURL(c), certificate.ID), "View certificate")
}

func (h *Handler) view(c *gin.Context) {
	id := c.Param("id")

	details, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	c.HTML(http.StatusOK, "view-certificate.html", gin.H{
		"Title":       details.Certificate.Title,
		"Certificate": details.Certificate,
		"Certifier":   details.Certifier,
		"DownloadURL": DownloadURL(h.baseURL(c), id),
	})
}

func (h *Handler) download(c *gin.Context) {
	id := c.Param("id")

	result, err := h.service.Render(c.Request.Context(), id, h.baseURL(c))
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	c.DataFromReader(http.StatusOK, int64(result.PDF.Len()), "application/pdf", result.PDF, map[string]string{
		"Content-Disposition": `attachment; filename="Certificate.pdf"`,
	})
}

func (h *Handler) list(c *gin.Context) {
	certifierID := auth.CertifierID(c)

	certifier, err := h.certifiers.Get(c.Request.Context(), certifierID)
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}
	list, err := h.service.ListByCertifier(c.Request.Context(), certifierID)
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	c.HTML(http.StatusOK, "list-certificates.html", gin.H{
		"Title":        "My certificates",
		"Certifier":    certifier.Name,
		"Certificates": list,
	})
}

func (h *Handler) export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		web.Fail(c, h.logger, common.NewError(common.ErrValidation, "Export format must be xlsx or csv."))
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(c.Request.Context(), &buf, auth.CertifierID(c), h.baseURL(c), format); err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, format.FileName(time.Now())))
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
