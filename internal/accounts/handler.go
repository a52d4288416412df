package accounts

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/auth"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/web"
)

// Handler serves the account pages
type Handler struct {
	service  Service
	sessions *auth.Sessions
	logger   *zap.Logger
}

func NewHandler(service Service, sessions *auth.Sessions, logger *zap.Logger) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		logger:   logger,
	}
}

// RegisterRoutes registers account routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	account := router.Group("/account")
	{
		account.GET("/register", h.registerPage)
		account.POST("/register", h.register)
		account.GET("/login", h.loginPage)
		account.POST("/login", h.login)
		account.GET("/logout", h.logout)
		account.POST("/logout", h.logout)

		verified := account.Group("", h.sessions.RequireCertifier())
		verified.GET("/verify", h.verifyPage)
		verified.POST("/verify", h.verify)
	}
}

func (h *Handler) registerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register-account.html", gin.H{"Title": "Register"})
}

func (h *Handler) register(c *gin.Context) {
	certifier, err := h.service.Register(c.Request.Context(), c.PostForm("name"), c.PostForm("password"))
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	web.Success(c, fmt.Sprintf("Account %s created successfully", certifier.Name), "/account/login", "Log in")
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login-account.html", gin.H{"Title": "Log in"})
}

func (h *Handler) login(c *gin.Context) {
	certifier, err := h.service.Login(c.Request.Context(), c.PostForm("name"), c.PostForm("password"))
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	if err := h.sessions.Start(c, certifier.ID); err != nil {
		web.Fail(c, h.logger, fmt.Errorf("failed to start session: %w", err))
		return
	}

	web.Success(c, "Logged in successfully", "/certificate/create", "Create a certificate")
}

func (h *Handler) logout(c *gin.Context) {
	h.sessions.End(c)
	web.Success(c, "Logged out successfully", "/account/login", "Log in again")
}

func (h *Handler) verifyPage(c *gin.Context) {
	certifier, err := h.service.Get(c.Request.Context(), auth.CertifierID(c))
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	c.HTML(http.StatusOK, "verify-account.html", gin.H{
		"Title":       "Verify website",
		"Tag":         h.service.OwnershipTag(certifier.Name),
		"VerifiedURL": certifier.VerifiedURL,
	})
}

func (h *Handler) verify(c *gin.Context) {
	url := strings.TrimSpace(c.PostForm("url"))

	certifier, err := h.service.VerifyWebsite(c.Request.Context(), auth.CertifierID(c), url)
	if err != nil {
		web.Fail(c, h.logger, err)
		return
	}

	web.Success(c, fmt.Sprintf("Account %s verified correctly with the website %s", certifier.Name, url), "", "")
}
