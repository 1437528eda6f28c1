package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
)

// Authentication error codes
const (
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeLoginRequired is used when a view or action needs a logged-in session
	ErrCodeLoginRequired = "ERR_LOGIN_REQUIRED"
	// ErrCodeForbidden is used when the user lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeDishNotFound is used when a dish is not on the restaurant's menu
	ErrCodeDishNotFound = "ERR_DISH_NOT_FOUND"
	// ErrCodeCartLineNotFound is used when a dish is not in the cart
	ErrCodeCartLineNotFound = "ERR_CART_LINE_NOT_FOUND"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeSubmissionInProgress is used when an order for the cart is already being placed
	ErrCodeSubmissionInProgress = "ERR_SUBMISSION_IN_PROGRESS"
	// ErrCodeRestaurantMismatch is used when a dish belongs to a different restaurant than the cart
	ErrCodeRestaurantMismatch = "ERR_CART_RESTAURANT_MISMATCH"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeCartEmpty is used when checking out an empty cart
	ErrCodeCartEmpty = "ERR_CART_EMPTY"
	// ErrCodeDishUnavailable is used when a cart dish left the menu before checkout
	ErrCodeDishUnavailable = "ERR_DISH_UNAVAILABLE"
	// ErrCodeConfirmationRequired is used when a destructive action was not confirmed
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidPaymentMethod is used for a payment method outside CARD, CASH and PAYPAL
	ErrCodeInvalidPaymentMethod = "ERR_INVALID_PAYMENT_METHOD"
	// ErrCodeInvalidOrderStatus is used for an unknown order status
	ErrCodeInvalidOrderStatus = "ERR_INVALID_ORDER_STATUS"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Backend error codes
const (
	// ErrCodeServiceUnavailable is used when a backend service cannot be reached; retryable
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
	// ErrCodeUpstream is used when a backend service fails with a server error
	ErrCodeUpstream = "ERR_UPSTREAM"
)

// Rate limiting error codes
const (
	// ErrCodeRateLimited is used when rate limit is exceeded
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeValidationRange: http.StatusBadRequest,

	// Auth errors
	ErrCodeUnauthorized:  http.StatusUnauthorized,
	ErrCodeLoginRequired: http.StatusUnauthorized,
	ErrCodeForbidden:     http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeDishNotFound:         http.StatusNotFound,
	ErrCodeCartLineNotFound:     http.StatusNotFound,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeSubmissionInProgress: http.StatusConflict,
	ErrCodeRestaurantMismatch:   http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeCartEmpty:            http.StatusUnprocessableEntity,
	ErrCodeDishUnavailable:      http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:           http.StatusBadRequest,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeInvalidJSON:          http.StatusBadRequest,
	ErrCodeInvalidPaymentMethod: http.StatusBadRequest,
	ErrCodeInvalidOrderStatus:   http.StatusBadRequest,
	ErrCodeRequestTooLarge:      http.StatusRequestEntityTooLarge,

	// Backend errors
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeUpstream:           http.StatusBadGateway,

	// Rate limiting -> 429 Too Many Requests
	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"INVALID_INPUT":            ErrCodeInvalidInput,
	"INVALID_STATE":            ErrCodeInvalidState,
	"UNAUTHORIZED":             ErrCodeUnauthorized,
	"FORBIDDEN":                ErrCodeForbidden,
	"LOGIN_REQUIRED":           ErrCodeLoginRequired,
	"CART_EMPTY":               ErrCodeCartEmpty,
	"CART_RESTAURANT_MISMATCH": ErrCodeRestaurantMismatch,
	"CART_INVALID_PRICE":       ErrCodeBusinessRule,
	"CART_INVALID_DISH":        ErrCodeInvalidInput,
	"CART_LINE_NOT_FOUND":      ErrCodeCartLineNotFound,
	"DISH_NOT_FOUND":           ErrCodeDishNotFound,
	"DISH_UNAVAILABLE":         ErrCodeDishUnavailable,
	"INVALID_PAYMENT_METHOD":   ErrCodeInvalidPaymentMethod,
	"INVALID_ORDER_STATUS":     ErrCodeInvalidOrderStatus,
	"SUBMISSION_IN_PROGRESS":   ErrCodeSubmissionInProgress,
	"CONFIRMATION_REQUIRED":    ErrCodeConfirmationRequired,
	"INVALID_PRICE":            ErrCodeValidationRange,
	"INVALID_AUTH_RESPONSE":    ErrCodeUpstream,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}

// CodeForStatus picks the API code for a backend response status
func CodeForStatus(status int) string {
	switch {
	case status == http.StatusBadRequest:
		return ErrCodeBadRequest
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict
	case status == http.StatusUnprocessableEntity:
		return ErrCodeBusinessRule
	case status == http.StatusTooManyRequests:
		return ErrCodeRateLimited
	case status >= http.StatusInternalServerError:
		return ErrCodeUpstream
	case status >= http.StatusBadRequest:
		return ErrCodeBadRequest
	default:
		return ErrCodeUnknown
	}
}
