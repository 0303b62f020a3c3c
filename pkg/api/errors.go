package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the provider-independent classification of a failure.
type ErrorKind string

const (
	ErrAuthentication  ErrorKind = "authentication_error"
	ErrRateLimit       ErrorKind = "rate_limit_error"
	ErrTimeout         ErrorKind = "timeout_error"
	ErrNetwork         ErrorKind = "network_error"
	ErrUpstreamService ErrorKind = "upstream_service_error"
	ErrInvalidRequest  ErrorKind = "invalid_request_error"
	ErrResponseParse   ErrorKind = "response_parse_error"
	ErrUnsupportedOp   ErrorKind = "unsupported_operation_error"
	ErrGenericProvider ErrorKind = "provider_error"
	ErrConfiguration   ErrorKind = "configuration_error"
)

// Error is the single error shape surfaced by the adapter layer. It carries
// the classification kind, a human-readable message, the upstream HTTP status
// where one exists, and the original cause.
type Error struct {
	Kind       ErrorKind
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *Error) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s [%d]: %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error.
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates a classified error preserving the original cause.
func WrapError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// StatusError creates a classified error carrying the upstream HTTP status.
func StatusError(kind ErrorKind, status int, message string) *Error {
	return &Error{Kind: kind, Message: message, HTTPStatus: status}
}

// IsKind reports whether err (or anything it wraps) is an *Error of the
// given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Problem implements RFC 9457 for the HTTP boundary.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`

	Extensions map[string]any `json:"-"`

	Log error `json:"-"`
}

func (p *Problem) Error() string {
	return fmt.Sprintf("[%d] %s: %s", p.Status, p.Title, p.Detail)
}

func (p *Problem) MarshalJSON() ([]byte, error) {
	type Alias Problem

	data := make(map[string]any)

	for k, v := range p.Extensions {
		data[k] = v
	}

	stdJSON, _ := json.Marshal(Alias(*p))
	_ = json.Unmarshal(stdJSON, &data)

	return json.Marshal(data)
}

type ProblemOption func(*Problem)

// NewProblem creates a generic Problem
func NewProblem(status int, title, detail string, opts ...ProblemOption) *Problem {
	p := &Problem{
		Type:       "about:blank", // Default as per RFC
		Title:      title,
		Status:     status,
		Detail:     detail,
		Extensions: make(map[string]any),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// WithExtension adds a custom key-value pair to the response
func WithExtension(key string, value any) ProblemOption {
	return func(p *Problem) {
		p.Extensions[key] = value
	}
}

// WithLog attaches an internal error for server-side logging
func WithLog(err error) ProblemOption {
	return func(p *Problem) {
		p.Log = err
	}
}

// WithType sets the RFC "type" URI
func WithType(uri string) ProblemOption {
	return func(p *Problem) {
		p.Type = uri
	}
}

// ValidationError creates a rich validation error
func ValidationError(validationErrors map[string]string) *Problem {
	return NewProblem(
		http.StatusBadRequest,
		"Validation Error",
		"One or more fields failed validation",
		WithExtension("errors", validationErrors),
	)
}

// AsProblem maps a classified *Error to its RFC 9457 representation so the
// HTTP edge renders the taxonomy uniformly. Unclassified errors become a
// generic 500.
func AsProblem(err error) *Problem {
	var e *Error
	if !errors.As(err, &e) {
		var p *Problem
		if errors.As(err, &p) {
			return p
		}
		return NewProblem(http.StatusInternalServerError, "Internal Error", err.Error(), WithLog(err))
	}

	status := http.StatusBadGateway
	title := "Provider Error"

	switch e.Kind {
	case ErrAuthentication:
		status, title = http.StatusUnauthorized, "Authentication Error"
	case ErrRateLimit:
		status, title = http.StatusTooManyRequests, "Rate Limit Exceeded"
	case ErrTimeout:
		status, title = http.StatusGatewayTimeout, "Upstream Timeout"
	case ErrNetwork:
		status, title = http.StatusBadGateway, "Network Error"
	case ErrUpstreamService:
		status, title = http.StatusBadGateway, "Upstream Service Error"
	case ErrInvalidRequest:
		status, title = http.StatusBadRequest, "Invalid Request"
	case ErrResponseParse:
		status, title = http.StatusBadGateway, "Malformed Provider Response"
	case ErrUnsupportedOp:
		status, title = http.StatusNotImplemented, "Unsupported Operation"
	case ErrConfiguration:
		status, title = http.StatusInternalServerError, "Configuration Error"
	}

	return NewProblem(status, title, e.Message,
		WithExtension("kind", string(e.Kind)),
		WithLog(e))
}
