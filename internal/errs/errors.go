/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

// Package errs defines the error categories used across groundwork so that
// commands can decide whether a failure is safe to retry, needs operator
// attention, or is an ordinary "the user said no" outcome.
package errs

import (
	"errors"
	"fmt"
)

// Category classifies an error for handling and reporting.
type Category string

const (
	// CategoryPrecondition indicates the environment is not ready; no
	// mutating call has been or will be made.
	CategoryPrecondition Category = "precondition"
	// CategoryStateConflict indicates another operation is already in
	// progress on the stack.
	CategoryStateConflict Category = "state_conflict"
	// CategoryUnsupportedProvider indicates the repository host is not a
	// recognised OIDC federation provider.
	CategoryUnsupportedProvider Category = "unsupported_provider"
	// CategoryTransientAPI indicates rate limiting or an intermittent
	// network failure during a read; bounded retry is safe.
	CategoryTransientAPI Category = "transient_api"
	// CategoryPartialFailure indicates a multi-resource operation in which
	// some sub-resources failed; the error enumerates them.
	CategoryPartialFailure Category = "partial_failure"
	// CategoryUserDeclined indicates an explicit negative confirmation;
	// treated as a successful no-op by callers.
	CategoryUserDeclined Category = "user_declined"
	// CategoryIrrecoverable indicates a stuck state requiring manual
	// operator action; never auto-retried.
	CategoryIrrecoverable Category = "irrecoverable"
	// CategoryTimeout indicates a wait ceiling was exceeded, distinct from
	// an operation reaching a failure status.
	CategoryTimeout Category = "timeout"
)

// Error is a categorised error with an optional underlying cause.
type Error struct {
	Category Category
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Category, e.Message)
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on category so callers can test errors.Is(err, errs.New(cat, "")).
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Category == other.Category
	}
	return false
}

// New creates a categorised error.
func New(category Category, message string) *Error {
	return &Error{Category: category, Message: message}
}

// Newf creates a categorised error with a formatted message.
func Newf(category Category, format string, args ...any) *Error {
	return &Error{Category: category, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a categorised error around a cause.
func Wrap(category Category, message string, cause error) *Error {
	return &Error{Category: category, Message: message, Cause: cause}
}

// CategoryOf returns the category of err, or empty string if err carries none.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return ""
}
