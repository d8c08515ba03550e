// Package apierror holds the error envelopes written to clients.
// Handlers never serialize a raw error: database messages and stack
// traces stay in the logs.
package apierror

// APIError is the body of every 4xx/5xx response.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// WithCode tags the error with a stable machine-readable code.
func WithCode(code, msg string) *APIError {
	return &APIError{Detail: msg, Code: code}
}

// ValidationError lists the failing field and the rule it broke.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "validation failed", Fields: fields}
}
