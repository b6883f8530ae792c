package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity violates a database
	// constraint. Check the wrapped error for details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrTransactionFailed is returned when a database transaction fails
	// to begin or commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	ErrUserNotFound        = fmt.Errorf("%w: user", ErrNotFound)
	ErrGymNotFound         = fmt.Errorf("%w: gym", ErrNotFound)
	ErrPlanNotFound        = fmt.Errorf("%w: membership plan", ErrNotFound)
	ErrClassNotFound       = fmt.Errorf("%w: class", ErrNotFound)
	ErrScheduleNotFound    = fmt.Errorf("%w: class schedule", ErrNotFound)
	ErrBookingNotFound     = fmt.Errorf("%w: booking", ErrNotFound)
	ErrMembershipNotFound  = fmt.Errorf("%w: membership", ErrNotFound)
	ErrExerciseNotFound    = fmt.Errorf("%w: exercise", ErrNotFound)
	ErrWorkoutNotFound     = fmt.Errorf("%w: workout", ErrNotFound)
	ErrDietEntryNotFound   = fmt.Errorf("%w: diet entry", ErrNotFound)
	ErrCompetitionNotFound = fmt.Errorf("%w: competition", ErrNotFound)
	ErrCompTaskNotFound    = fmt.Errorf("%w: competition task", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: participant", ErrNotFound)
	ErrProgressNotFound    = fmt.Errorf("%w: task progress", ErrNotFound)
	ErrPaymentNotFound     = fmt.Errorf("%w: payment", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrExerciseNameExists indicates that the catalog already has an exercise with that name.
	ErrExerciseNameExists = fmt.Errorf("%w: exercise name", ErrDuplicate)

	// ErrAlreadyParticipant indicates that the user already joined the competition.
	ErrAlreadyParticipant = fmt.Errorf("%w: participant", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "booking")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string
	Err       error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, e.Entity, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
