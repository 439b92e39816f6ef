// Package errors is the project error type: a stable code for transport mapping,
// an optional domain reason clients can switch on, and numeric details that are safe to show.
// Import it as perr.
package errors

import (
	stderrs "errors"
	"fmt"
	"maps"
	"net/http"
)

// ErrorCode classifies an error for transport; values are part of the wire format
type ErrorCode uint16

// Codes; append only
const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeTooManyRequests
	ErrorCodeUnauthorized
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeJSON
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB
	ErrorCodePaymentRequired
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodeTooManyRequests: http.StatusTooManyRequests,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeJSON:            http.StatusBadRequest,
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodePaymentRequired: http.StatusPaymentRequired,
}

// HTTPStatusCode maps c to a status; anything unlisted is a 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// ErrNotFound is what single row lookups return when nothing matched
var ErrNotFound = New(ErrorCodeNotFound, "not found")

// Error carries a code and message plus optional reason, details, field and op.
// The wrapped cause is for logs only and never reaches the wire
type Error struct {
	orig    error
	msg     string
	code    ErrorCode
	reason  string
	details map[string]int64
	field   string
	op      string
}

// Wire is the client facing projection of an Error
type Wire struct {
	Code    ErrorCode        `json:"code"`
	Reason  string           `json:"reason,omitempty"`
	Message string           `json:"message"`
	Field   string           `json:"field,omitempty"`
	Details map[string]int64 `json:"details,omitempty"`
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return e.msg + ": " + e.orig.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }

// Code is the transport class
func (e *Error) Code() ErrorCode { return e.code }

// Field names the offending input, if any
func (e *Error) Field() string { return e.field }

// Op names the operation that failed, if set
func (e *Error) Op() string { return e.op }

// Reason is the stable domain kind, e.g. AlreadyUsed
func (e *Error) Reason() string { return e.reason }

// Details returns a copy of the numeric details
func (e *Error) Details() map[string]int64 { return maps.Clone(e.details) }

// ToWire projects e for clients
func (e *Error) ToWire() Wire {
	return Wire{Code: e.code, Reason: e.reason, Message: e.msg, Field: e.field, Details: maps.Clone(e.details)}
}

// WireFrom projects any error; foreign errors collapse to a generic message
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: "internal error"}
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf is err's code, Unknown for foreign errors
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err carries code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// ReasonOf is err's domain reason, empty when unset
func ReasonOf(err error) string {
	if e, ok := As(err); ok {
		return e.reason
	}
	return ""
}

// IsReason reports whether err carries the non empty reason
func IsReason(err error, reason string) bool { return reason != "" && ReasonOf(err) == reason }

// HTTPStatus is the status err maps to
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// edit copies the *Error in err, applies fn and returns the copy; foreign errors pass through
func edit(err error, fn func(*Error)) error {
	e, ok := As(err)
	if !ok {
		return err
	}
	c := *e
	fn(&c)
	return &c
}

// WithField returns a copy of err naming the offending field
func WithField(err error, field string) error { return edit(err, func(e *Error) { e.field = field }) }

// WithOp returns a copy of err labelled with op
func WithOp(err error, op string) error { return edit(err, func(e *Error) { e.op = op }) }

// WithReason returns a copy of err with a domain reason
func WithReason(err error, reason string) error {
	return edit(err, func(e *Error) { e.reason = reason })
}

// WithDetail returns a copy of err with one more numeric detail
func WithDetail(err error, key string, v int64) error {
	return edit(err, func(e *Error) {
		e.details = maps.Clone(e.details)
		if e.details == nil {
			e.details = make(map[string]int64, 2)
		}
		e.details[key] = v
	})
}

// New builds an *Error
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf builds an *Error with a formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap builds an *Error around orig
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Kind builds an *Error with a domain reason
func Kind(code ErrorCode, reason, msg string) error {
	return &Error{code: code, reason: reason, msg: msg}
}

// WrapKind builds an *Error with a domain reason around orig
func WrapKind(orig error, code ErrorCode, reason, msg string) error {
	return &Error{code: code, reason: reason, msg: msg, orig: orig}
}

// NotFoundf is Newf with ErrorCodeNotFound
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// InvalidArgf is Newf with ErrorCodeInvalidArgument
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }

// JSONErrf is Newf with ErrorCodeJSON
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf is Newf with ErrorCodePanic
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }
