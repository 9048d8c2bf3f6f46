// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNotConfigured    = errors.New("backend not configured")
	ErrSubmitInFlight   = errors.New("a submission is already in flight")
	ErrGateNotIdle      = errors.New("gate has an unacknowledged outcome")
	ErrNoBlockedRequest = errors.New("no blocked request available for override")
	ErrSessionDisposed  = errors.New("chart session is disposed")
	ErrSessionNotLive   = errors.New("chart session is not live")
	ErrSurfaceOwned     = errors.New("chart surface already owned by a live session")
	ErrPollerStopped    = errors.New("poller is stopped")
	ErrInvalidMode      = errors.New("invalid trading mode")
	ErrDataNotFound     = errors.New("data not found")
	ErrDatabaseError    = errors.New("database error")
)

// Classification codes the backend attaches to structured order rejections.
const (
	CodeRiskFirewallBlock = "RISK_FIREWALL_BLOCK"
	CodeStrategyMismatch  = "STRATEGY_MISMATCH"
)

// APIError represents a server-reported failure: the request reached the
// backend and it answered with a non-2xx status. Detail fields are parsed
// from the structured `detail` object when the backend sends one.
type APIError struct {
	Status             int
	Code               string
	Message            string
	Reason             string
	RiskScore          float64
	CompatibilityScore float64
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error [%d %s]: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error [%d]: %s", e.Status, e.Message)
}

// NewAPIError creates a new APIError.
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

// RequestError represents a transport-level failure: the request never
// produced a server response (connection refused, timeout, bad URL).
type RequestError struct {
	Op  string
	URL string
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error [%s %s]: %v", e.Op, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// NewRequestError creates a new RequestError.
func NewRequestError(op, url string, err error) *RequestError {
	return &RequestError{
		Op:  op,
		URL: url,
		Err: err,
	}
}

// FetchError wraps a read-path failure with the resource it came from.
// Read-path errors never propagate past the poll scheduler; they become
// the error field of the view's snapshot.
type FetchError struct {
	Resource string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch error [%s]: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError.
func NewFetchError(resource string, err error) *FetchError {
	return &FetchError{
		Resource: resource,
		Err:      err,
	}
}

// Transient reports whether err is a read failure the next poll tick can
// recover from, as opposed to a programming or lifecycle error.
func Transient(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500 || apiErr.Status == 429
	}
	return false
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
