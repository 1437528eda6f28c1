package middleware

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ViewPathHeader lets a browser name the view an action was taken from
const ViewPathHeader = "X-View-Path"

// SessionKey is the gin context key of the session handle
const SessionKey = "session"

// SessionConfig configures the session cookie
type SessionConfig struct {
	CookieName string
	MaxAge     time.Duration
	Domain     string
	Path       string
	Secure     bool
	SameSite   http.SameSite
}

// ParseSameSite maps a config value to the cookie attribute
func ParseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// Session identifies the browser by its cookie, issuing one if absent,
// and opens the browser's session for the request. A session whose token
// has passed its expiry is expired here, before any view sees it.
func Session(manager *session.Manager, cfg SessionConfig) gin.HandlerFunc {
	if cfg.Path == "" {
		cfg.Path = "/"
	}
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.CookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}
		c.SetSameSite(cfg.SameSite)
		c.SetCookie(cfg.CookieName, id, int(cfg.MaxAge.Seconds()), cfg.Path, cfg.Domain, cfg.Secure, true)

		ctx := c.Request.Context()
		log := logger.GetGinLogger(c)
		h, err := manager.Open(ctx, id)
		if err != nil {
			log.Error("failed to open session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeServiceUnavailable,
				"Session storage is unavailable. Please try again.",
				GetRequestID(c),
			))
			return
		}

		view := ViewPath(c)
		if h.Expired() {
			if expired, err := h.Expire(ctx, navigation.ReturnPath(view)); err != nil {
				log.Warn("failed to expire session", zap.Error(err))
			} else if expired {
				log.Info("session token expired")
			}
		}

		ctx = session.WithHandle(ctx, h)
		ctx = navigation.WithCurrentPath(ctx, view)
		c.Request = c.Request.WithContext(ctx)
		c.Set(SessionKey, h)
		c.Next()
	}
}

// GetSession returns the handle opened by Session
func GetSession(c *gin.Context) *session.Handle {
	if v, ok := c.Get(SessionKey); ok {
		if h, ok := v.(*session.Handle); ok {
			return h
		}
	}
	return nil
}

// ViewPath is the view the browser is on. A GET is the view itself; other
// methods are actions and name their view in ViewPathHeader.
func ViewPath(c *gin.Context) string {
	if c.Request.Method == http.MethodGet {
		return c.Request.URL.RequestURI()
	}
	return sanitizeViewPath(c.GetHeader(ViewPathHeader))
}

// sanitizeViewPath keeps only same-origin absolute paths
func sanitizeViewPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return ""
	}
	u, err := url.Parse(p)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return u.RequestURI()
}

// WithViewPath overrides the current view for the rest of the request
func WithViewPath(c *gin.Context, path string) {
	c.Request = c.Request.WithContext(navigation.WithCurrentPath(c.Request.Context(), path))
}
