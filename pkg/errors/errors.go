package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Status    int    `json:"status"`
	Retryable bool   `json:"retryable,omitempty"`
	Err       error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict     = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss    = New("CACHE_MISS", http.StatusNotFound, "cache miss")

	// ErrDataIntegrity reports a mark set that violates write-time invariants,
	// such as marks obtained exceeding the maximum. The whole batch is rejected.
	ErrDataIntegrity = New("DATA_INTEGRITY", http.StatusUnprocessableEntity, "data integrity violation")

	// ErrGradeScaleConfig reports a grade-band table with gaps or overlaps.
	// Grading is blocked for the tenant until the scale is fixed.
	ErrGradeScaleConfig = New("GRADE_SCALE_INVALID", http.StatusConflict, "grade scale configuration invalid")

	// ErrClassLocked reports advisory-lock contention on a class pipeline run.
	ErrClassLocked = &Error{Code: "CLASS_LOCKED", Status: http.StatusConflict, Message: "class is locked by another operation, retry later", Retryable: true}

	// ErrExamNotApproved blocks promotion and publication on unapproved exams.
	ErrExamNotApproved = New("EXAM_NOT_APPROVED", http.StatusPreconditionFailed, "exam is not approved")

	// ErrExamApproved blocks direct mark writes once an exam is published.
	ErrExamApproved = New("EXAM_APPROVED", http.StatusPreconditionFailed, "exam already approved, use a complaint to correct marks")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
