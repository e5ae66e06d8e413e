package order

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP edge.
type Kind string

const (
	KindValidation Kind = "validation_failed"
	KindNotFound   Kind = "not_found"
	KindForbidden  Kind = "forbidden"
	KindConflict   Kind = "conflict"
	KindStorage    Kind = "storage_error"
)

// Error carries a Kind, a stable Code and a human message. Two errors match
// under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrValidation      = &Error{Kind: KindValidation, Code: "validation_failed", Message: "validation failed"}
	ErrEmptyOrder      = &Error{Kind: KindValidation, Code: "empty_order", Message: "order has no items"}
	ErrInvalidLineItem = &Error{Kind: KindValidation, Code: "invalid_line_item", Message: "invalid line item"}
	ErrInvalidStatus   = &Error{Kind: KindValidation, Code: "invalid_status", Message: "invalid status"}
	ErrMissingReason   = &Error{Kind: KindValidation, Code: "missing_reason", Message: "a reason is required"}
	ErrNotFound        = &Error{Kind: KindNotFound, Code: "not_found", Message: "order not found"}
	ErrNoRestaurant    = &Error{Kind: KindNotFound, Code: "no_restaurant", Message: "vendor has no restaurant"}
	ErrForbidden       = &Error{Kind: KindForbidden, Code: "forbidden", Message: "not allowed"}
	ErrConflict        = &Error{Kind: KindConflict, Code: "conflict", Message: "order status changed concurrently"}
	ErrStorage         = &Error{Kind: KindStorage, Code: "storage_error", Message: "storage unavailable"}
)

// ErrDuplicateNumber is returned by repositories when an order number is taken.
var ErrDuplicateNumber = errors.New("order number already in use")

func failf(base *Error, format string, args ...any) *Error {
	return &Error{Kind: base.Kind, Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

func storage(err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindStorage, Code: ErrStorage.Code, Message: ErrStorage.Message, Err: err}
}

// KindOf returns the kind of err; unknown errors are storage errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// CodeOf returns the stable code of err.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrStorage.Code
}
