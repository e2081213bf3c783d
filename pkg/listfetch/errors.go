package listfetch

import (
	"errors"
	"fmt"
)

// Sentinel errors, one per Kind. A *Error matches its kind's sentinel with errors.Is.
var (
	ErrTransport       = errors.New("transport error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrServerError     = errors.New("server error")
	ErrInvalidData     = errors.New("invalid data")
	ErrDecoding        = errors.New("decoding error")
)

// Kind classifies a failed fetch.
type Kind string

const (
	KindTransport       Kind = "transport_error"
	KindInvalidResponse Kind = "invalid_response"
	KindServerError     Kind = "server_error"
	KindInvalidData     Kind = "invalid_data"
	KindDecoding        Kind = "decoding_error"
)

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindInvalidResponse:
		return ErrInvalidResponse
	case KindServerError:
		return ErrServerError
	case KindInvalidData:
		return ErrInvalidData
	case KindDecoding:
		return ErrDecoding
	default:
		return nil
	}
}

// Error is the failure value of every fetch. Err carries the transport or
// decoder cause when there is one.
type Error struct {
	Kind       Kind
	URL        string
	StatusCode int    // set for KindServerError
	Snippet    string // leading part of a non-2xx body, for diagnostics only
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
	if e.StatusCode != 0 {
		base += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Snippet != "" {
		base += fmt.Sprintf(" body: %s", e.Snippet)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports whether target is the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	if e == nil {
		return false
	}
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf extracts the Kind from err, if err wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return "", false
}

// IsKind helps callers classify errors without a type assertion.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
