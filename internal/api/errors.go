package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed API call so callers can tell a dead network
// from a rejected request or a broken server.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindUnauthorized
	KindNotFound
	KindConflict
	KindRejected
	KindServer
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRejected:
		return "rejected"
	case KindServer:
		return "server"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Retryable reports whether repeating the same request may succeed.
func (k Kind) Retryable() bool {
	return k == KindNetwork || k == KindServer
}

// Error is returned by every Client method that fails.
type Error struct {
	Kind    Kind
	Op      string // e.g. "GET /api/products"
	Status  int    // 0 when no response was received
	Message string // server-provided message, if any
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindServer
	default:
		return KindRejected
	}
}
