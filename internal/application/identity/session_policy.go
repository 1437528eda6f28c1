package identity

import (
	"context"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/domain/session"
	"go.uber.org/zap"
)

// SessionPolicy connects the service clients to the request's session.
// It is shared by every client; all per-request state comes from ctx.
type SessionPolicy struct {
	logger *zap.Logger
}

// NewSessionPolicy creates a new SessionPolicy
func NewSessionPolicy(logger *zap.Logger) *SessionPolicy {
	return &SessionPolicy{logger: logger}
}

// Token returns the bearer token of the request's session, empty if none
func (p *SessionPolicy) Token(ctx context.Context) string {
	h := session.FromContext(ctx)
	if h == nil {
		return ""
	}
	return h.Token()
}

// Unauthorized expires the session after the backend rejected its token and
// returns the view to send the browser to. The current view is remembered
// for after login. Nothing is returned when the browser is already on the
// login view.
func (p *SessionPolicy) Unauthorized(ctx context.Context) string {
	current := navigation.CurrentPath(ctx)
	if h := session.FromContext(ctx); h != nil {
		expired, err := h.Expire(ctx, navigation.ReturnPath(current))
		if err != nil {
			p.logger.Error("Failed to expire session", zap.Error(err))
		} else if expired {
			p.logger.Info("Session expired by backend", zap.String("return_to", current))
		}
	}
	if current == navigation.LoginPath {
		return ""
	}
	return navigation.LoginPath
}
