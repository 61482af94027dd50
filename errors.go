package swclient

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrorKind is the closed set of outcomes a failed request is classified into.
type ErrorKind uint8

const (
	// KindSessionExpired means the stored token had expired before the call
	// was sent. The Session was cleared and a redirect was signaled.
	KindSessionExpired ErrorKind = iota + 1
	// KindUnauthenticated is HTTP 401. The Session was cleared and a redirect
	// was signaled.
	KindUnauthenticated
	// KindForbidden is HTTP 403.
	KindForbidden
	// KindNotFound is HTTP 404.
	KindNotFound
	// KindThrottled is HTTP 429.
	KindThrottled
	// KindValidationFailed is HTTP 422 or any other unclassified 4xx.
	KindValidationFailed
	// KindServerFault is HTTP 5xx or a response that breaks the JSON contract.
	KindServerFault
	// KindNetworkUnavailable means no response was received.
	KindNetworkUnavailable
)

// Sentinels matched by errors.Is against any *Error of the same kind.
var (
	// ErrSessionExpired matches KindSessionExpired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthenticated matches KindUnauthenticated.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden matches KindForbidden.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound matches KindNotFound.
	ErrNotFound = errors.New("not found")
	// ErrThrottled matches KindThrottled.
	ErrThrottled = errors.New("throttled")
	// ErrValidationFailed matches KindValidationFailed.
	ErrValidationFailed = errors.New("validation failed")
	// ErrServerFault matches KindServerFault.
	ErrServerFault = errors.New("server fault")
	// ErrNetworkUnavailable matches KindNetworkUnavailable.
	ErrNetworkUnavailable = errors.New("network unavailable")
)

var (
	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrClientNotReady is returned by methods called on a nil Client.
	ErrClientNotReady = errors.New("client not initialized")
)

// String returns the snake_case name used in logs, metrics and audit events.
func (k ErrorKind) String() string {
	switch k {
	case KindSessionExpired:
		return "session_expired"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindThrottled:
		return "throttled"
	case KindValidationFailed:
		return "validation_failed"
	case KindServerFault:
		return "server_fault"
	case KindNetworkUnavailable:
		return "network_unavailable"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// InvalidatesSession reports whether the client clears the Session and
// signals a redirect for this kind.
func (k ErrorKind) InvalidatesSession() bool {
	return k == KindSessionExpired || k == KindUnauthenticated
}

// Retryable reports whether repeating the same call may succeed. The client
// itself never retries.
func (k ErrorKind) Retryable() bool {
	return k == KindNetworkUnavailable || k == KindThrottled
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSessionExpired:
		return ErrSessionExpired
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindThrottled:
		return ErrThrottled
	case KindValidationFailed:
		return ErrValidationFailed
	case KindServerFault:
		return ErrServerFault
	case KindNetworkUnavailable:
		return ErrNetworkUnavailable
	default:
		return nil
	}
}

// FieldError is one field-level validation message from the backend.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Error is the single error type returned by request paths.
//
// errors.Is matches both the per-kind sentinel (ErrForbidden, ...) and the
// wrapped cause, if any.
type Error struct {
	Kind       ErrorKind
	Status     int
	Method     string
	Path       string
	Message    string
	Fields     []FieldError
	RetryAfter time.Duration
	RequestID  string
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("swclient: ")
	if e.Method != "" {
		b.WriteString(e.Method)
		b.WriteByte(' ')
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf extracts the ErrorKind of err, if err carries one.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
