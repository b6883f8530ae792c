package api

import (
	"errors"
	"net/http"

	"github.com/fitdash/fitdash-api/internal/api/shared"
	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/service/auth"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/go-playground/validator/v10"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	// Authentication
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return http.StatusUnauthorized

	// Authorization
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrNoActiveMembership),
		errors.Is(err, service.ErrNotParticipant):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflicts with the current state of a resource
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, service.ErrScheduleUnavailable),
		errors.Is(err, service.ErrAlreadyBooked),
		errors.Is(err, service.ErrClassFull),
		errors.Is(err, service.ErrWeeklyLimitReached),
		errors.Is(err, service.ErrBookingNotCancellable),
		errors.Is(err, service.ErrBookingNotActive),
		errors.Is(err, service.ErrPlanInactive),
		errors.Is(err, service.ErrMembershipExists),
		errors.Is(err, service.ErrGymFull),
		errors.Is(err, service.ErrCompetitionNotActive),
		errors.Is(err, service.ErrCompetitionClosed):
		return http.StatusConflict

	// Bad input
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, service.ErrUnknownExercise),
		errors.Is(err, payment.ErrInvalidSignature),
		errors.Is(err, payment.ErrWebhookUnsupported),
		errors.Is(err, shared.ErrEmptyBody):
		return http.StatusBadRequest

	case errors.As(err, new(validator.ValidationErrors)):
		return http.StatusBadRequest

	case errors.Is(err, payment.ErrProvider):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

// safeMessages pairs sentinels with the message clients see. The first match wins,
// so specific errors precede the generic ones they wrap.
var safeMessages = []struct {
	err error
	msg string
}{
	{service.ErrInvalidCredentials, "Invalid email or password"},
	{auth.ErrExpiredToken, "Token expired"},
	{auth.ErrInvalidToken, "Invalid token"},
	{auth.ErrInvalidRefreshToken, "Invalid refresh token"},
	{auth.ErrExpiredRefreshToken, "Invalid refresh token"},
	{auth.ErrWrongTokenType, "Invalid refresh token"},

	{service.ErrForbidden, "You are not allowed to access this resource"},
	{service.ErrNoActiveMembership, "An active membership at this gym is required"},
	{service.ErrNotParticipant, "You have not joined this competition"},

	{store.ErrUserNotFound, "User not found"},
	{store.ErrGymNotFound, "Gym not found"},
	{store.ErrPlanNotFound, "Membership plan not found"},
	{store.ErrClassNotFound, "Class not found"},
	{store.ErrScheduleNotFound, "Class schedule not found"},
	{store.ErrBookingNotFound, "Booking not found"},
	{store.ErrMembershipNotFound, "Membership not found"},
	{store.ErrExerciseNotFound, "Exercise not found"},
	{store.ErrWorkoutNotFound, "Workout not found"},
	{store.ErrDietEntryNotFound, "Diet entry not found"},
	{store.ErrCompetitionNotFound, "Competition not found"},
	{store.ErrCompTaskNotFound, "Competition task not found"},
	{store.ErrParticipantNotFound, "Participant not found"},
	{store.ErrPaymentNotFound, "Payment not found"},
	{store.ErrNotFound, "Resource not found"},

	{store.ErrEmailExists, "Email already exists"},
	{store.ErrExerciseNameExists, "An exercise with this name already exists"},
	{store.ErrAlreadyParticipant, "You have already joined this competition"},
	{store.ErrDuplicate, "Resource already exists"},

	{service.ErrScheduleUnavailable, "This class is cancelled or has already started"},
	{service.ErrAlreadyBooked, "You have already booked this class"},
	{service.ErrClassFull, "This class is full"},
	{service.ErrWeeklyLimitReached, "Weekly booking limit reached for your plan"},
	{service.ErrBookingNotCancellable, "This booking can no longer be cancelled"},
	{service.ErrBookingNotActive, "This booking is not active"},
	{service.ErrPlanInactive, "This membership plan is not available"},
	{service.ErrMembershipExists, "You already have an active or pending membership at this gym"},
	{service.ErrGymFull, "This gym has reached its member limit"},
	{service.ErrCompetitionNotActive, "This competition is not active"},
	{service.ErrCompetitionClosed, "This competition has already ended"},
	{domain.ErrInvalidTransition, "This action is not allowed in the current state"},

	{service.ErrUnknownExercise, "Workout references unknown exercises"},
	{payment.ErrInvalidSignature, "Invalid webhook signature"},
	{payment.ErrWebhookUnsupported, "Webhooks are not supported by the configured payment provider"},
	{shared.ErrEmptyBody, "Request body is required"},
	{store.ErrInvalidEntity, "Invalid entity data"},
	{payment.ErrProvider, "Payment provider unavailable"},
}

// GetSafeErrorMessage returns a client-facing message for err. Validation
// errors report the failing field; anything unrecognized gets a generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "Validation failed"
	}
	if errors.As(err, new(validator.ValidationErrors)) {
		return "Validation failed"
	}

	for _, m := range safeMessages {
		if errors.Is(err, m.err) {
			return m.msg
		}
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrInvalidID) {
		return "Validation failed"
	}
	return "An unexpected error occurred"
}

// validationDetails lists the field failures carried by err.
func validationDetails(err error) []shared.FieldError {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		field := verr.Field
		if field == "" {
			field = "request"
		}
		return []shared.FieldError{{Field: field, Message: verr.Message}}
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]shared.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, shared.FieldError{Field: fe.Field(), Message: tagMessage(fe)})
	}
	return details
}

// tagMessage maps validation tags to user-friendly messages.
func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_with", "required_if":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid ID"
	case "decimal":
		return "must be a decimal amount"
	case "gtfield":
		return "must be after " + fe.Param()
	default:
		return "is invalid"
	}
}

// HandleAPIError writes the error envelope for err. fallback replaces the
// generic message for otherwise unrecognized 5xx errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if status == http.StatusInternalServerError && fallback != "" {
		message = fallback
	}

	var opts []shared.ResponseOption
	if details := validationDetails(err); len(details) > 0 {
		opts = append(opts, shared.WithDetails(details))
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err, opts...)
}
