package domain

import (
	"errors"
	"fmt"
)

// Application error codes.
// These map to HTTP status codes at the handler boundary.
const (
	ECONFLICT     = "conflict"       // 409
	EINTERNAL     = "internal"       // 500 - details hidden from callers
	EINVALID      = "invalid"        // 400
	ENOTFOUND     = "not_found"      // 404
	EUNAUTHORIZED = "unauthorized"   // 401
	EFORBIDDEN    = "forbidden"      // 403
	ECARTEMPTY    = "cart_empty"     // 400 - checkout attempted with no lines
	EPAYMENT      = "payment_failed" // 402 - gateway declined or errored
	ETOOLARGE     = "too_large"      // 413
	ERATELIMIT    = "rate_limited"   // 429
)

// Error represents an application error with a code and message.
type Error struct {
	// Code is a machine-readable error code (e.g., EINVALID, ENOTFOUND).
	Code string

	// Message is a human-readable message safe to show to users.
	Message string

	// Op is the operation where the error occurred (e.g., "checkout.run").
	// Used for logging, never shown to users.
	Op string

	// Err is the underlying error, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Op != "" {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sentinel errors shared across services. Compare with errors.Is.
var (
	ErrCartEmpty = &Error{
		Code:    ECARTEMPTY,
		Message: "Cart is empty",
	}

	ErrPaymentFailed = &Error{
		Code:    EPAYMENT,
		Message: "Payment was not accepted",
	}

	ErrInsufficientStock = &Error{
		Code:    ECONFLICT,
		Message: "Not enough stock available",
	}
)

// ErrorCode extracts the error code from an error.
// Returns EINTERNAL for non-domain errors and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return EINTERNAL
}

// ErrorMessage extracts a user-facing message from an error.
// Internal errors collapse to a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var e *Error
	if errors.As(err, &e) && e.Code != EINTERNAL {
		return e.Message
	}

	return "An internal error occurred. Please try again later."
}

// ErrorOp extracts the operation from an error (for logging).
func ErrorOp(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Errorf creates a new domain error with formatted message.
// Example: domain.Errorf(domain.EINVALID, "discount.resolve", "unknown discount type: %s", t)
func Errorf(code, op, format string, args ...any) error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps err with a domain code and operation. Returns nil if err is nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}

	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// IsCode reports whether err carries the given error code.
func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

// NotFound creates a not found error for a resource.
// Example: domain.NotFound("order.get", "order", orderID.String())
func NotFound(op, resource, identifier string) error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s not found: %s", resource, identifier),
	}
}

func Unauthorized(op, message string) error {
	return &Error{Code: EUNAUTHORIZED, Op: op, Message: message}
}

func Forbidden(op, message string) error {
	return &Error{Code: EFORBIDDEN, Op: op, Message: message}
}

func Invalid(op, message string) error {
	return &Error{Code: EINVALID, Op: op, Message: message}
}

func Conflict(op, message string) error {
	return &Error{Code: ECONFLICT, Op: op, Message: message}
}

// Internal wraps an infrastructure failure. The message shown to users is generic.
func Internal(err error, op, message string) error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}
