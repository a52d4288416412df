// Package server assembles the gin engine that serves the portal.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "certificate-automation/certifier-portal/certifier-portal-backend/api/v1"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/common"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/store"
	"certificate-automation/certifier-portal/certifier-portal-backend/internal/web"
)

var errPanic = errors.New("handler panicked")

const healthTimeout = 2 * time.Second

// NewRouter builds the engine with middleware, pages and the health check.
func NewRouter(api *v1.PortalAPI, db store.DocumentStore, logger *zap.Logger) (*gin.Engine, error) {
	router := gin.New()

	pages, err := web.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(pages)

	router.Use(RequestLogger(logger))
	router.Use(Recovery(logger))
	router.Use(StoreScope())

	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/certificate/create")
	})

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
		})
	})

	v1.RegisterPortalRoutes(&router.RouterGroup, api)

	router.NoRoute(func(c *gin.Context) {
		web.Fail(c, logger, common.NewError(common.ErrNotFound, "Page not found."))
	})

	return router, nil
}
