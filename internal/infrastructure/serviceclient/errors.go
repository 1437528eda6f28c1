package serviceclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies a failed backend call
type Kind int

const (
	// KindStatus is any non-2xx status not covered by another kind
	KindStatus Kind = iota
	// KindUnauthorized is a 401 on a protected request; the session was expired
	KindUnauthorized
	// KindForbidden is a 403
	KindForbidden
	// KindNetwork is an unreachable backend or a timeout
	KindNetwork
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNetwork:
		return "network"
	default:
		return "status"
	}
}

const (
	msgGeneric      = "Something went wrong. Please try again."
	msgForbidden    = "You do not have permission to perform this action"
	msgUnauthorized = "Your session has expired. Please log in again."
	msgNetwork      = "The service is unreachable. Please try again."
	msgTimeout      = "The service did not respond in time. Please try again."
)

// Error is a failed backend call
type Error struct {
	Service    string
	Method     string
	Path       string
	Kind       Kind
	StatusCode int
	Message    string            // extracted from the response body, may be empty
	Fields     map[string]string // field-level validation messages
	Redirect   string            // login redirect forced by a 401, empty if none
	Err        error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Kind == KindNetwork {
		return fmt.Sprintf("%s %s %s: %s: %v", e.Service, e.Method, e.Path, e.Kind, e.Err)
	}
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Service, e.Method, e.Path, e.StatusCode, msg)
}

// Unwrap returns the transport error, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the most specific message to show: field messages
// joined, else the backend message, else a generic one for the kind
func (e *Error) UserMessage() string {
	if len(e.Fields) > 0 {
		return joinFields(e.Fields)
	}
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindUnauthorized:
		return msgUnauthorized
	case KindForbidden:
		return msgForbidden
	case KindNetwork:
		if IsTimeout(e.Err) {
			return msgTimeout
		}
		return msgNetwork
	default:
		return msgGeneric
	}
}

// AsError unwraps err into a *Error
func AsError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func isKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsUnauthorized reports whether err is a 401 that expired the session
func IsUnauthorized(err error) bool { return isKind(err, KindUnauthorized) }

// IsForbidden reports whether err is a 403
func IsForbidden(err error) bool { return isKind(err, KindForbidden) }

// IsNetwork reports whether err is a connectivity failure or timeout
func IsNetwork(err error) bool { return isKind(err, KindNetwork) }

// IsNotFound reports whether err is a 404
func IsNotFound(err error) bool {
	e, ok := AsError(err)
	return ok && e.StatusCode == http.StatusNotFound
}

// errorBody is the error shape of the backend services
type errorBody struct {
	Message  string            `json:"message"`
	Error    string            `json:"error"`
	Messages map[string]string `json:"messages"`
}

// parseErrorBody extracts the message and field messages from a backend
// error body. Non-JSON bodies yield nothing.
func parseErrorBody(body []byte) (string, map[string]string) {
	var b errorBody
	if len(body) == 0 || json.Unmarshal(body, &b) != nil {
		return "", nil
	}
	msg := b.Message
	if msg == "" {
		msg = b.Error
	}
	if len(b.Messages) == 0 {
		return msg, nil
	}
	return msg, b.Messages
}

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		if fields[k] != "" {
			msgs = append(msgs, fields[k])
		}
	}
	return strings.Join(msgs, ", ")
}
