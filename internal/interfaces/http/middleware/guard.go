package middleware

import (
	"net/http"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RouteGuard admits the request only if the current session may open a
// route of the given access level. It decides on every request.
func RouteGuard(access navigation.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		var s session.Session
		if h := session.FromContext(c.Request.Context()); h != nil {
			s = h.Session()
		}

		d := navigation.Decide(access, s)
		if d.Allow {
			c.Next()
			return
		}

		code, message := dto.ErrCodeLoginRequired, "Please log in to continue"
		if d.Redirect != navigation.LoginPath {
			code, message = dto.ErrCodeForbidden, "You do not have permission to view this page"
		}
		resp := dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c))
		resp.Redirect = d.Redirect
		c.Header("Location", d.Redirect)
		c.AbortWithStatusJSON(http.StatusSeeOther, resp)
	}
}
