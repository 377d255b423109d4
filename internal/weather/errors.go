package weather

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies a failure at the point it is first observed. The kind
// is never rewritten once assigned.
type ErrorKind string

const (
	ErrNetwork   ErrorKind = "network"    // transport failure; safe to retry with backoff
	ErrHTTP      ErrorKind = "http"       // unexpected non-2xx status
	ErrContract  ErrorKind = "contract"   // payload violates the expected schema
	ErrRateLimit ErrorKind = "rate_limit" // provider throttling; carries a retry hint
	ErrConfig    ErrorKind = "config"     // missing or rejected credential
	ErrUnknown   ErrorKind = "unknown"
)

// Error is the typed error carried through the fetch pipeline and stored in
// cache slots.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int           // set for kind http and rate_limit
	RetryAfter time.Duration // rate-limit retry hint, zero when absent
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// MarshalJSON emits the retry hint in milliseconds for API consumers.
func (e *Error) MarshalJSON() ([]byte, error) {
	type wire struct {
		Kind         ErrorKind `json:"kind"`
		Message      string    `json:"message"`
		StatusCode   int       `json:"statusCode,omitempty"`
		RetryAfterMs int64     `json:"retryAfterMs,omitempty"`
	}
	return json.Marshal(wire{
		Kind:         e.Kind,
		Message:      e.Message,
		StatusCode:   e.StatusCode,
		RetryAfterMs: e.RetryAfter.Milliseconds(),
	})
}

// NewError builds a typed error.
func NewError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ContractError builds a contract violation; message should name the first
// violated field.
func ContractError(format string, args ...any) *Error {
	return NewError(ErrContract, format, args...)
}

// Classify returns err as a typed *Error, wrapping untyped errors as kind
// unknown. An existing kind is preserved as-is.
func Classify(err error) *Error {
	var werr *Error
	if errors.As(err, &werr) {
		return werr
	}
	return &Error{Kind: ErrUnknown, Message: err.Error()}
}
