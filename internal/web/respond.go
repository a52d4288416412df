package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/fetch"
)

const genericMessage = "An unexpected error occurred."

// StatusFor maps an error class to its HTTP status. critical marks data
// integrity failures.
func StatusFor(err error) (status int, critical bool) {
	switch {
	case errors.Is(err, common.ErrDataIntegrity):
		return http.StatusInternalServerError, true
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, false
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, false
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, false
	case errors.Is(err, common.ErrAlreadyExists):
		return http.StatusConflict, false
	case fetch.IsFetchError(err):
		return http.StatusBadGateway, false
	default:
		return http.StatusInternalServerError, false
	}
}

// Fail renders the error page for err. Server-side failures are logged.
func Fail(c *gin.Context, logger *zap.Logger, err error) {
	status, critical := StatusFor(err)
	message := common.UserMessage(err, genericMessage)

	switch {
	case critical:
		logger.Error("Critical error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	case status == http.StatusBadGateway:
		logger.Warn("Upstream request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	case status >= http.StatusInternalServerError:
		logger.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}

	c.HTML(status, "error.html", gin.H{
		"Title":    "Error",
		"Message":  message,
		"Critical": critical,
	})
}

// Success renders the confirmation page. link may be empty.
func Success(c *gin.Context, message, link, linkText string) {
	c.HTML(http.StatusOK, "success.html", gin.H{
		"Title":    "Success",
		"Message":  message,
		"Link":     link,
		"LinkText": linkText,
	})
}
