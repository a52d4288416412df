package settings

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/settings")
	g.GET("/default", h.GetDefault)
	g.POST("/validate", h.Validate)
}

// GetDefault returns the built-in layout for template designers.
func (h *Handler) GetDefault(c *gin.Context) {
	c.JSON(http.StatusOK, Default())
}

// Validate reports whether the request body would be accepted as render settings.
func (h *Handler) Validate(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
		return
	}

	parsed, ok := Parse(body)
	c.JSON(http.StatusOK, gin.H{
		"valid":    ok,
		"settings": parsed,
	})
}
