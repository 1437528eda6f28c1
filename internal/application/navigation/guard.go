// Package navigation decides which views a session may open.
package navigation

import (
	"context"

	"github.com/delivery/storefront/internal/domain/session"
)

// Well-known view paths
const (
	HomePath     = "/"
	LoginPath    = "/login"
	RegisterPath = "/register"
)

// Access classifies a route by who may open it
type Access int

const (
	// Public routes always render
	Public Access = iota
	// Authenticated routes need a logged-in session
	Authenticated
	// AuthenticatedAdmin routes need a session carrying the admin role
	AuthenticatedAdmin
)

// String returns the access level name
func (a Access) String() string {
	switch a {
	case Public:
		return "PUBLIC"
	case Authenticated:
		return "AUTHENTICATED"
	case AuthenticatedAdmin:
		return "AUTHENTICATED_ADMIN"
	default:
		return "UNKNOWN"
	}
}

// Decision is the outcome of a guard check. Redirect is set when Allow is false.
type Decision struct {
	Allow    bool
	Redirect string
}

// Decide evaluates a route against the current session. It holds no state,
// so every navigation sees the session as it is now.
func Decide(access Access, s session.Session) Decision {
	switch access {
	case Public:
		return Decision{Allow: true}
	case Authenticated:
		if !s.IsAuthenticated() {
			return Decision{Redirect: LoginPath}
		}
		return Decision{Allow: true}
	case AuthenticatedAdmin:
		if !s.IsAuthenticated() {
			return Decision{Redirect: LoginPath}
		}
		if !s.HasRole(session.RoleAdmin) {
			return Decision{Redirect: HomePath}
		}
		return Decision{Allow: true}
	default:
		return Decision{Redirect: HomePath}
	}
}

type pathKey struct{}

// WithCurrentPath records the view path the request is rendering
func WithCurrentPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, pathKey{}, path)
}

// CurrentPath returns the view path of the request, empty if unknown
func CurrentPath(ctx context.Context) string {
	p, _ := ctx.Value(pathKey{}).(string)
	return p
}

// ReturnPath is the post-login redirect to record when leaving path for the
// login view. The login view itself and unknown paths record nothing.
func ReturnPath(path string) string {
	if path == "" || path == LoginPath {
		return ""
	}
	return path
}
