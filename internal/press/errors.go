package press

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure so callers can branch without matching text.
type Kind string

const (
	// KindInvalidState is a precondition violated before any request was made.
	KindInvalidState Kind = "invalid_state"
	// KindNotFound is a 404 or an unknown named client in the version manifest.
	KindNotFound Kind = "not_found"
	// KindServer is any other non-2xx response.
	KindServer Kind = "server"
	// KindTransport covers network failures and undecodable bodies.
	KindTransport Kind = "transport"
	// KindInvalidResponse is a 2xx response missing a required field.
	KindInvalidResponse Kind = "invalid_response"
)

// Sentinel errors, matched by kind through errors.Is.
var (
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrServer          = &Error{Kind: KindServer}
	ErrTransport       = &Error{Kind: KindTransport}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
)

// Error is returned by every Client operation.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = "epubpress " + e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or "".
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidState(op, msg string) error {
	return &Error{Kind: KindInvalidState, Op: op, Message: msg}
}

func transportError(op string, err error) error {
	return &Error{Kind: KindTransport, Op: op, Message: "request failed", Err: err}
}

func invalidResponse(op, msg string) error {
	return &Error{Kind: KindInvalidResponse, Op: op, Message: msg}
}

// statusError maps a non-2xx status code onto the taxonomy.
func statusError(op, what string, code int) error {
	if code == http.StatusNotFound {
		return &Error{
			Kind:       KindNotFound,
			Op:         op,
			StatusCode: code,
			Message:    fmt.Sprintf("%s not found", what),
		}
	}
	return &Error{
		Kind:       KindServer,
		Op:         op,
		StatusCode: code,
		Message:    fmt.Sprintf("Unexpected server response: %d %s", code, http.StatusText(code)),
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}
