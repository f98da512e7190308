// Package errors provides centralized error definitions and classification
// for the fiphunt codebase. It defines the failure taxonomy the acquisition
// race is built around, error constructors with context wrapping, and the
// single Classify dispatch point workers use to decide how to recover.
//
// # Error Classes
//
// Every failure a worker can observe maps to exactly one Class:
//   - ClassAuth: the session token is invalid or expired; recovered by
//     rebuilding the session, never fatal to a worker.
//   - ClassTransient: an allocator API or network failure; the iteration is
//     retried after the inter-attempt delay.
//   - ClassMalformed: the allocator granted a resource without a usable
//     address; released and retried like a transient failure.
//   - ClassInterrupted: the operation was cancelled from outside; the worker
//     cleans up and terminates.
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewAllocatorError("allocate", baseErr).WithStatusCode(503)
//	err := errors.Wrap(baseErr, "resolving external network")
//
// Checking errors:
//
//	switch errors.Classify(err) {
//	case errors.ClassAuth:
//	    // rebuild the session
//	case errors.ClassTransient:
//	    // retry after delay
//	}
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Class is the recovery category of a failure, as seen by a worker.
type Class int

const (
	// ClassNone is the class of a nil error.
	ClassNone Class = iota
	// ClassAuth marks session-invalid failures recovered by re-authenticating.
	ClassAuth
	// ClassTransient marks allocator API failures retried on the next iteration.
	ClassTransient
	// ClassMalformed marks allocations granted without a usable address.
	ClassMalformed
	// ClassInterrupted marks failures caused by an external stop request.
	ClassInterrupted
)

// String returns the string representation of the class.
func (c Class) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassAuth:
		return "auth"
	case ClassTransient:
		return "transient"
	case ClassMalformed:
		return "malformed"
	case ClassInterrupted:
		return "interrupted"
	default:
		return "unknown"
	}
}

// Sentinel errors.
var (
	// ErrAuthInvalid indicates the session token is expired or invalid.
	ErrAuthInvalid = New("authentication invalid")
	// ErrMalformedAllocation indicates a resource was granted without a
	// usable address.
	ErrMalformedAllocation = New("allocation has no usable address")
	// ErrInterrupted indicates an external stop request ended the operation.
	ErrInterrupted = New("interrupted")
)

// AllocatorError represents a failure talking to the external resource
// allocator. It records which operation failed and, when known, the HTTP
// status the allocator answered with.
//
// Example:
//
//	err := errors.NewAllocatorError("release", cause).WithCandidateID(fip.ID)
type AllocatorError struct {
	Op          string // allocate, release, claim, status, resolve
	CandidateID string
	StatusCode  int // 0 when unknown
	cause       error
}

// NewAllocatorError creates a new AllocatorError for the given operation.
func NewAllocatorError(op string, cause error) *AllocatorError {
	return &AllocatorError{Op: op, cause: cause}
}

// WithCandidateID records the resource instance the operation touched.
func (e *AllocatorError) WithCandidateID(id string) *AllocatorError {
	e.CandidateID = id
	return e
}

// WithStatusCode records the HTTP status returned by the allocator.
func (e *AllocatorError) WithStatusCode(code int) *AllocatorError {
	e.StatusCode = code
	return e
}

// Error returns the formatted error message.
func (e *AllocatorError) Error() string {
	var parts []string
	if e.CandidateID != "" {
		parts = append(parts, fmt.Sprintf("candidate=%s", e.CandidateID))
	}
	if e.StatusCode != 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	prefix := fmt.Sprintf("allocator %s failed", e.Op)
	if len(parts) > 0 {
		prefix = fmt.Sprintf("allocator %s failed [%s]", e.Op, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %v", prefix, e.cause)
	}
	return prefix
}

// Unwrap returns the underlying error.
func (e *AllocatorError) Unwrap() error {
	return e.cause
}

// IsAuth reports whether the allocator answered with a status that means
// the session is no longer valid. 401 is the expired-token case; 404 from
// the identity service means the token record itself is gone.
func (e *AllocatorError) IsAuth() bool {
	return e.StatusCode == 401 || (e.Op == "authenticate" && e.StatusCode == 404)
}

// Classify maps an error to its recovery class. It is the single dispatch
// point per worker iteration: collaborator failures are classified here
// rather than in scattered type switches.
//
// Unknown errors classify as ClassTransient so that no unexpected failure
// can silently terminate a worker.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}
	if Is(err, context.Canceled) || Is(err, context.DeadlineExceeded) || Is(err, ErrInterrupted) {
		return ClassInterrupted
	}
	if Is(err, ErrMalformedAllocation) {
		return ClassMalformed
	}
	if Is(err, ErrAuthInvalid) {
		return ClassAuth
	}
	var allocErr *AllocatorError
	if As(err, &allocErr) && allocErr.IsAuth() {
		return ClassAuth
	}
	return ClassTransient
}

// IsRetryable reports whether the iteration that produced err should simply
// be retried after the inter-attempt delay. Auth failures are also
// recoverable but require a session rebuild first, so they are excluded.
func IsRetryable(err error) bool {
	switch Classify(err) {
	case ClassTransient, ClassMalformed:
		return true
	default:
		return false
	}
}

// Wrap wraps an error with an additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "resolving server")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
