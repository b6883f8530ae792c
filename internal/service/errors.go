package service

import (
	"errors"
	"fmt"
)

// Service errors - sentinel errors for expected conditions.
// The API layer maps them to HTTP status codes; callers check them with errors.Is.
var (
	// ErrForbidden indicates the caller may not act on the resource.
	// API layer should map this to HTTP 403 Forbidden.
	ErrForbidden = errors.New("not allowed to access this resource")

	// ErrInvalidCredentials is returned for an unknown email and for a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Booking flow (HTTP 409 unless noted)

	ErrScheduleUnavailable   = errors.New("class schedule is cancelled or has already started")
	ErrNoActiveMembership    = errors.New("no active membership covers this class") // 403
	ErrAlreadyBooked         = errors.New("class is already booked")
	ErrClassFull             = errors.New("class is full")
	ErrWeeklyLimitReached    = errors.New("weekly booking limit reached")
	ErrBookingNotCancellable = errors.New("booking can no longer be cancelled")
	ErrBookingNotActive      = errors.New("booking is not active")

	// Membership flow (HTTP 409)

	ErrPlanInactive     = errors.New("membership plan is not available")
	ErrMembershipExists = errors.New("an active or pending membership at this gym already exists")
	ErrGymFull          = errors.New("gym has reached its member limit")

	// Competitions

	ErrCompetitionNotActive = errors.New("competition is not active")           // 409
	ErrCompetitionClosed    = errors.New("competition has already ended")       // 409
	ErrNotParticipant       = errors.New("user has not joined the competition") // 403

	// ErrUnknownExercise is returned when a workout references exercises missing from the catalog.
	ErrUnknownExercise = errors.New("workout references unknown exercises")
)

// ServiceError wraps unexpected failures with the operation that failed.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(service, operation, message string, err error) *ServiceError {
	return &ServiceError{
		Service:   service,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
