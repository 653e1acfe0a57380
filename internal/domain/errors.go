package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrWindowNotOpen is returned when a question has not started yet.
	ErrWindowNotOpen = errors.New("question is not open yet")
	// ErrWindowClosed is returned when a timer is requested after the question closed.
	ErrWindowClosed = errors.New("question window closed")
	// ErrWindowExpired is returned when an answer arrives after the participant's deadline.
	ErrWindowExpired = errors.New("answer window expired")
	// ErrDuplicateSubmission is returned on a second answer by the same participant.
	ErrDuplicateSubmission = errors.New("participant already answered this question")
	// ErrQuestionNotFound indicates the question id is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrNoActiveQuestion indicates no question is open at the requested instant.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrTimerNotFound indicates no personal timer exists yet.
	ErrTimerNotFound = errors.New("personal timer not found")
	// ErrSubmissionNotFound indicates the submission id is unknown.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrConflict is returned by stores when an insert hits a uniqueness constraint.
	ErrConflict = errors.New("unique constraint violated")
	// ErrStorage matches every *StorageError.
	ErrStorage = errors.New("storage failure")
)

// ValidationError describes malformed question or submission input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps an unexpected fault from the backing store.
type StorageError struct {
	Op  string
	Err error
}

func NewStorageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}
