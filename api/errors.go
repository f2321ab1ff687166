package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Kind classifies an Error.
type Kind int

const (
	// KindHTTP is a request rejected by the server with a status other than 401 or 429.
	KindHTTP Kind = iota
	// KindTransport is a network level failure or timeout.
	KindTransport
	// KindDecode is a response that does not match the expected shape.
	KindDecode
	// KindUnauthenticated means no usable credential.
	KindUnauthenticated
	// KindRateLimited is a 429.
	KindRateLimited
	// KindValidation is input rejected before any network call.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindRateLimited:
		return "rate limited"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// ErrorDetail is one element of the API's error array.
type ErrorDetail struct {
	ID      string          `json:"id"`
	Status  int             `json:"status"`
	Title   string          `json:"title"`
	Detail  string          `json:"detail"`
	Context json.RawMessage `json:"context,omitempty"`
}

func (d ErrorDetail) String() string {
	if d.Detail == "" {
		return d.Title
	}
	if d.Title == "" {
		return d.Detail
	}
	return d.Title + ": " + d.Detail
}

// Error is returned by every client call that fails.
type Error struct {
	Kind Kind
	// Status is the HTTP status, zero when no response was received.
	Status int
	Errors []ErrorDetail
	// RetryAfter is set for KindRateLimited when the server said how long to wait.
	RetryAfter mo.Option[time.Duration]
	// Field and Reason are set for KindValidation.
	Field  string
	Reason string
	// Body is the raw response for KindDecode.
	Body  []byte
	Cause error
}

// Sentinels matching by kind through errors.Is.
var (
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
	ErrRateLimited     = &Error{Kind: KindRateLimited}
)

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		msg := fmt.Sprintf("http %d", e.Status)
		if len(e.Errors) > 0 {
			msg += ": " + strings.Join(lo.Map(e.Errors, func(d ErrorDetail, _ int) string {
				return d.String()
			}), "; ")
		}
		return msg
	case KindTransport:
		if e.Cause == nil {
			return "transport error"
		}
		return "transport error: " + e.Cause.Error()
	case KindDecode:
		if e.Cause == nil {
			return "decode error"
		}
		return "decode error: " + e.Cause.Error()
	case KindUnauthenticated:
		if e.Cause != nil {
			return "unauthenticated: " + e.Cause.Error()
		}
		return "unauthenticated"
	case KindRateLimited:
		if d, ok := e.RetryAfter.Get(); ok {
			return fmt.Sprintf("rate limited, retry after %s", d.Round(time.Second))
		}
		return "rate limited"
	case KindValidation:
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	default:
		return "api error"
	}
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error of the same kind, so sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Timeout reports whether a transport error was a timeout.
func (e *Error) Timeout() bool {
	if e.Kind != KindTransport {
		return false
	}
	var ne net.Error
	if errors.As(e.Cause, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(e.Cause, context.DeadlineExceeded)
}

// NewValidation builds a KindValidation error.
func NewValidation(field, reason string) *Error {
	return &Error{Kind: KindValidation, Field: field, Reason: reason}
}

// NewTransportError wraps a network failure.
func NewTransportError(cause error) *Error {
	return &Error{Kind: KindTransport, Cause: cause}
}

func newDecode(cause error, body []byte) *Error {
	return &Error{Kind: KindDecode, Cause: cause, Body: body}
}

func newUnauthenticated(cause error) *Error {
	return &Error{Kind: KindUnauthenticated, Cause: cause}
}

// NewHTTPError builds a KindHTTP error from a status and the raw response body.
func NewHTTPError(status int, body []byte) *Error {
	return &Error{Kind: KindHTTP, Status: status, Errors: parseErrorDetails(body)}
}

// parseErrorDetails reads the error array, ignoring bodies that do not carry one.
func parseErrorDetails(body []byte) []ErrorDetail {
	var envelope struct {
		Errors []ErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	return envelope.Errors
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// IsStatus reports whether err is an HTTP error with the given status.
func IsStatus(err error, status int) bool {
	e, ok := AsError(err)
	return ok && e.Status == status
}
