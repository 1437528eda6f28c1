package handler

import (
	"errors"
	"net/http"
	"sort"
	"strconv"

	"github.com/delivery/storefront/internal/application/navigation"
	"github.com/delivery/storefront/internal/domain/session"
	"github.com/delivery/storefront/internal/domain/shared"
	"github.com/delivery/storefront/internal/infrastructure/logger"
	"github.com/delivery/storefront/internal/infrastructure/serviceclient"
	"github.com/delivery/storefront/internal/interfaces/http/dto"
	"github.com/delivery/storefront/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize, totalPages int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize, totalPages))
}

// successPage sends the items of a page with its meta
func successPage[T any](h *BaseHandler, c *gin.Context, p shared.Paginated[T]) {
	h.SuccessWithMeta(c, p.Items, p.Total, p.Page, p.PageSize, p.TotalPages)
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Navigate sends a success response telling the browser which view to show next
func (h *BaseHandler) Navigate(c *gin.Context, status int, data any, to string) {
	c.JSON(status, dto.NewRedirectResponse(data, to))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError sends a 400 validation error response with details
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		middleware.GetRequestID(c),
		details,
	))
}

// ForceNavigation sends the browser to another view with a 303 and an
// error envelope naming the target
func (h *BaseHandler) ForceNavigation(c *gin.Context, to, code, message string) {
	resp := dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c))
	resp.Redirect = to
	c.Header("Location", to)
	c.JSON(http.StatusSeeOther, resp)
}

// HandleError converts service, domain and unexpected errors to responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	if se, ok := serviceclient.AsError(err); ok {
		h.handleServiceError(c, se)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.NormalizeErrorCode(domainErr.Code)
		if code == dto.ErrCodeLoginRequired {
			h.ForceNavigation(c, navigation.LoginPath, code, domainErr.Message)
			return
		}
		h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
		return
	}

	logger.GetGinLogger(c).Error("Unhandled error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

func (h *BaseHandler) handleServiceError(c *gin.Context, e *serviceclient.Error) {
	switch e.Kind {
	case serviceclient.KindUnauthorized:
		if e.Redirect != "" {
			h.ForceNavigation(c, e.Redirect, dto.ErrCodeUnauthorized, e.UserMessage())
			return
		}
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, e.UserMessage())
	case serviceclient.KindForbidden:
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, e.UserMessage())
	case serviceclient.KindNetwork:
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeServiceUnavailable, e.UserMessage())
	default:
		if len(e.Fields) > 0 {
			message := e.Message
			if message == "" {
				message = "Request validation failed"
			}
			c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
				message,
				middleware.GetRequestID(c),
				fieldDetails(e.Fields),
			))
			return
		}
		status := e.StatusCode
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		h.Error(c, status, dto.CodeForStatus(e.StatusCode), e.UserMessage())
	}
}

func fieldDetails(fields map[string]string) []dto.ValidationDetail {
	details := make([]dto.ValidationDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, dto.ValidationDetail{Field: field, Message: msg})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Field < details[j].Field })
	return details
}

// bindJSON binds the request body, answering with a 400 or 413 on failure
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	return h.bind(c, c.ShouldBindJSON(req))
}

// bindQuery binds the query string, answering with a 400 on failure
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	return h.bind(c, c.ShouldBindQuery(req))
}

func (h *BaseHandler) bind(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	if details := middleware.ValidationDetails(err); len(details) > 0 {
		h.ValidationError(c, details)
		return false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return false
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Invalid request body")
	return false
}

// parseID reads a positive integer path parameter
func (h *BaseHandler) parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid "+param)
		return 0, false
	}
	return id, true
}

// sessionOf returns the handle opened by the session middleware
func (h *BaseHandler) sessionOf(c *gin.Context) (*session.Handle, bool) {
	s := middleware.GetSession(c)
	if s == nil {
		logger.GetGinLogger(c).Error("Session middleware not installed", zap.String("path", c.FullPath()))
		h.InternalError(c, "An unexpected error occurred")
		return nil, false
	}
	return s, true
}
