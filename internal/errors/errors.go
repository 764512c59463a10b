// Package errors provides custom error types for the stylist client and relay.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for common cases
var (
	ErrRateLimited     = errors.New("rate limit reached")
	ErrUsageLimit      = errors.New("usage limit reached")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrNoBody          = errors.New("response body missing")
)

// Messages surfaced to the user for the distinguished relay failures.
// The relay sends the same texts in its JSON error body.
const (
	RateLimitMessage   = "Rate limit reached. Please try again in a moment."
	UsageLimitMessage  = "Usage limit reached. Please add credits to continue."
	UnavailableMessage = "AI service unavailable. Please try again."
	RequestFailed      = "Request failed"
)

// APIError represents a non-success response from an endpoint
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates an APIError keeping the raw response body for diagnostics
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

// RateLimitError is returned when the relay answers 429
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	if e.Message == "" {
		return "rate limit reached"
	}
	return fmt.Sprintf("rate limit reached: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(message string) *RateLimitError {
	return &RateLimitError{Message: message}
}

// UsageLimitError is returned when the relay answers 402 (credits exhausted)
type UsageLimitError struct {
	Message string
}

func (e *UsageLimitError) Error() string {
	if e.Message == "" {
		return "usage limit exceeded"
	}
	return fmt.Sprintf("usage limit exceeded: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *UsageLimitError) Is(target error) bool {
	if target == ErrUsageLimit {
		return true
	}
	_, ok := target.(*UsageLimitError)
	return ok
}

// NewUsageLimitError creates a new UsageLimitError
func NewUsageLimitError(message string) *UsageLimitError {
	return &UsageLimitError{Message: message}
}

// NetworkError wraps a transport failure (dial, TLS, read)
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s (%s): %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Err: err}
}

// NewNetworkErrorWithEndpoint creates a NetworkError that records the endpoint
func NewNetworkErrorWithEndpoint(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a payload that could not be decoded
type ParseError struct {
	Message string
	Payload string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, payload string) *ParseError {
	return &ParseError{Message: message, Payload: payload}
}

// IsRateLimitError reports whether err is (or wraps) a rate limit failure
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUsageLimitError reports whether err is (or wraps) a credits/quota failure
func IsUsageLimitError(err error) bool {
	return errors.Is(err, ErrUsageLimit)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// GetHTTPStatus extracts the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case IsRateLimitError(err):
		return http.StatusTooManyRequests
	case IsUsageLimitError(err):
		return http.StatusPaymentRequired
	default:
		return 0
	}
}

// UserMessage turns err into the text shown in the "Stylist unavailable" notice
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		rateErr  *RateLimitError
		usageErr *UsageLimitError
		apiErr   *APIError
	)
	switch {
	case errors.As(err, &rateErr):
		if rateErr.Message != "" {
			return rateErr.Message
		}
		return RateLimitMessage
	case errors.As(err, &usageErr):
		if usageErr.Message != "" {
			return usageErr.Message
		}
		return UsageLimitMessage
	case errors.As(err, &apiErr):
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return RequestFailed
	case IsNetworkError(err):
		return "Could not reach the stylist service. Check your connection."
	default:
		return err.Error()
	}
}
