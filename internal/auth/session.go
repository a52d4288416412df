package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	CookieName = "certifier_session"
	LoginPath  = "/account/login"

	certifierIDKey = "certifier_id"
)

// Sessions issues and checks the session cookie.
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
	logger *zap.Logger
}

// NewSessions creates a session manager. secure marks cookies HTTPS-only.
func NewSessions(secret []byte, ttl time.Duration, secure bool, logger *zap.Logger) *Sessions {
	return &Sessions{secret: secret, ttl: ttl, secure: secure, logger: logger}
}

// Start logs the certifier in by setting the session cookie.
func (s *Sessions) Start(c *gin.Context, certifierID string) error {
	token, err := GenerateToken(certifierID, s.secret, s.ttl)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(s.ttl.Seconds()), "/", "", s.secure, true)
	return nil
}

// End clears the session cookie.
func (s *Sessions) End(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", s.secure, true)
}

// Current returns the certifier id of a valid session, or "".
func (s *Sessions) Current(c *gin.Context) string {
	token, err := c.Cookie(CookieName)
	if err != nil || token == "" {
		return ""
	}
	id, err := GetCertifierIDFromToken(token, s.secret)
	if err != nil {
		s.logger.Debug("Rejected session cookie", zap.Error(err))
		return ""
	}
	return id
}

// RequireCertifier redirects anonymous requests to the login page.
func (s *Sessions) RequireCertifier() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := s.Current(c)
		if id == "" {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Set(certifierIDKey, id)
		c.Next()
	}
}

// CertifierID returns the id stored by RequireCertifier.
func CertifierID(c *gin.Context) string {
	return c.GetString(certifierIDKey)
}
