package api

import (
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Authentication

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string      `json:"email"    validate:"required,email"`
	Password string      `json:"password" validate:"required,min=12,max=72"`
	Name     string      `json:"name"     validate:"required,max=100"`
	Role     domain.Role `json:"role"     validate:"omitempty,oneof=member gym_owner"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse carries a token pair and the authenticated user.
type AuthResponse struct {
	User         *domain.User `json:"user,omitempty"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// UpdateProfileRequest defines the payload for PATCH /users/me.
type UpdateProfileRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=1,max=100"`
	Password *string `json:"password" validate:"omitempty,min=12,max=72"`
}

// Gyms and plans

// GymListQuery filters the public gym listing.
type GymListQuery struct {
	PageQuery `query:",squash"`
	Search    string `query:"search" validate:"max=100"`
}

// CreateGymRequest defines the payload for creating a gym.
type CreateGymRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Address     string `json:"address"     validate:"required,max=500"`
	Description string `json:"description"`
	MaxMembers  *int   `json:"max_members" validate:"omitempty,gt=0"`
}

// UpdateGymRequest defines the payload for changing a gym. unlimited_members
// removes the member cap.
type UpdateGymRequest struct {
	Name             *string `json:"name"              validate:"omitempty,min=1,max=200"`
	Address          *string `json:"address"           validate:"omitempty,min=1,max=500"`
	Description      *string `json:"description"`
	MaxMembers       *int    `json:"max_members"       validate:"omitempty,gt=0"`
	UnlimitedMembers bool    `json:"unlimited_members"`
}

// PlanListQuery lets owners include inactive plans.
type PlanListQuery struct {
	IncludeInactive bool `query:"include_inactive"`
}

// CreatePlanRequest defines the payload for creating a membership plan.
type CreatePlanRequest struct {
	Name               string          `json:"name"                 validate:"required,max=100"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Currency           string          `json:"currency"             validate:"omitempty,len=3"`
	DurationDays       int             `json:"duration_days"        validate:"required,gt=0"`
	WeeklyBookingLimit int             `json:"weekly_booking_limit" validate:"gte=0"`
}

// UpdatePlanRequest defines the payload for changing a membership plan.
type UpdatePlanRequest struct {
	Name               *string          `json:"name"                 validate:"omitempty,min=1,max=100"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	DurationDays       *int             `json:"duration_days"        validate:"omitempty,gt=0"`
	WeeklyBookingLimit *int             `json:"weekly_booking_limit" validate:"omitempty,gte=0"`
	Active             *bool            `json:"active"`
}

// DeletePlanResponse reports whether the plan was deleted or only deactivated.
type DeletePlanResponse struct {
	Deactivated bool `json:"deactivated"`
}

// Classes and schedules

// CreateClassRequest defines the payload for creating a class.
type CreateClassRequest struct {
	Name            string `json:"name"             validate:"required,max=100"`
	Description     string `json:"description"`
	Instructor      string `json:"instructor"       validate:"max=100"`
	Capacity        int    `json:"capacity"         validate:"required,gt=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
}

// UpdateClassRequest defines the payload for changing a class.
type UpdateClassRequest struct {
	Name            *string `json:"name"             validate:"omitempty,min=1,max=100"`
	Description     *string `json:"description"`
	Instructor      *string `json:"instructor"       validate:"omitempty,max=100"`
	Capacity        *int    `json:"capacity"         validate:"omitempty,gt=0"`
	DurationMinutes *int    `json:"duration_minutes" validate:"omitempty,gt=0"`
}

// WindowQuery is an optional from/to date window.
type WindowQuery struct {
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

// WindowPageQuery is a date window with pagination.
type WindowPageQuery struct {
	PageQuery   `query:",squash"`
	WindowQuery `query:",squash"`
}

// CreateScheduleRequest defines the payload for scheduling a class. A zero
// capacity inherits the class capacity.
type CreateScheduleRequest struct {
	StartsAt time.Time `json:"starts_at" validate:"required"`
	Capacity int       `json:"capacity"  validate:"gte=0"`
}

// CancelScheduleResponse reports how many bookings a cancellation released.
type CancelScheduleResponse struct {
	BookingsCancelled int `json:"bookings_cancelled"`
}

// Bookings, memberships and payments

// CreateBookingRequest defines the payload for booking a class.
type CreateBookingRequest struct {
	ScheduleID uuid.UUID `json:"schedule_id" validate:"required"`
}

// BookingListQuery filters the caller's bookings.
type BookingListQuery struct {
	PageQuery `query:",squash"`
	Status    domain.BookingStatus `query:"status" validate:"omitempty,oneof=active cancelled attended"`
}

// PurchaseRequest defines the payload for buying a membership.
type PurchaseRequest struct {
	PlanID uuid.UUID `json:"plan_id" validate:"required"`
}

// Exercises and workouts

// ExerciseListQuery filters the exercise catalog.
type ExerciseListQuery struct {
	PageQuery   `query:",squash"`
	Search      string             `query:"search"       validate:"max=100"`
	MuscleGroup domain.MuscleGroup `query:"muscle_group"`
}

// ExerciseRequest defines the payload for creating or replacing an exercise.
type ExerciseRequest struct {
	Name        string             `json:"name"         validate:"required,max=100"`
	MuscleGroup domain.MuscleGroup `json:"muscle_group" validate:"required"`
	Equipment   string             `json:"equipment"    validate:"max=100"`
	Description string             `json:"description"`
}

// PlannedExerciseRequest is one target line of a planned workout.
type PlannedExerciseRequest struct {
	ExerciseID            uuid.UUID           `json:"exercise_id"             validate:"required"`
	TargetSets            int                 `json:"target_sets"             validate:"required,gt=0"`
	TargetReps            *int                `json:"target_reps"             validate:"omitempty,gt=0"`
	TargetWeight          decimal.NullDecimal `json:"target_weight"`
	TargetDurationSeconds *int                `json:"target_duration_seconds" validate:"omitempty,gt=0"`
}

// PlannedWorkoutRequest defines the payload for creating or replacing a planned workout.
type PlannedWorkoutRequest struct {
	Name         string                   `json:"name"          validate:"required,max=200"`
	ScheduledFor time.Time                `json:"scheduled_for" validate:"required"`
	Notes        string                   `json:"notes"`
	Exercises    []PlannedExerciseRequest `json:"exercises"     validate:"required,min=1,dive"`
}

// ActualExerciseRequest is one performed line of a logged workout.
type ActualExerciseRequest struct {
	ExerciseID      uuid.UUID           `json:"exercise_id"      validate:"required"`
	Sets            int                 `json:"sets"             validate:"required,gt=0"`
	Reps            *int                `json:"reps"             validate:"omitempty,gt=0"`
	Weight          decimal.NullDecimal `json:"weight"`
	DurationSeconds *int                `json:"duration_seconds" validate:"omitempty,gt=0"`
}

// ActualWorkoutRequest defines the payload for logging a workout.
type ActualWorkoutRequest struct {
	Name             string                  `json:"name"               validate:"required,max=200"`
	PerformedAt      time.Time               `json:"performed_at"       validate:"required"`
	DurationMinutes  int                     `json:"duration_minutes"   validate:"gte=0"`
	PlannedWorkoutID *uuid.UUID              `json:"planned_workout_id"`
	Notes            string                  `json:"notes"`
	Exercises        []ActualExerciseRequest `json:"exercises"          validate:"required,min=1,dive"`
}

// Diet

// DietRequest defines the payload for creating or replacing a diet entry.
type DietRequest struct {
	ConsumedAt time.Time       `json:"consumed_at" validate:"required"`
	MealType   domain.MealType `json:"meal_type"   validate:"required,oneof=breakfast lunch dinner snack"`
	FoodName   string          `json:"food_name"   validate:"required,max=200"`
	Calories   int             `json:"calories"    validate:"gte=0"`
	ProteinG   decimal.Decimal `json:"protein_g"`
	CarbsG     decimal.Decimal `json:"carbs_g"`
	FatG       decimal.Decimal `json:"fat_g"`
	Notes      string          `json:"notes"`
}

// Competitions

// CompetitionListQuery filters the competition listing.
type CompetitionListQuery struct {
	PageQuery `query:",squash"`
	GymID     uuid.UUID                `query:"gym_id"`
	Status    domain.CompetitionStatus `query:"status" validate:"omitempty,oneof=upcoming active completed"`
}

// CreateCompetitionRequest defines the payload for creating a competition.
type CreateCompetitionRequest struct {
	Name        string    `json:"name"        validate:"required,max=200"`
	Description string    `json:"description"`
	StartsAt    time.Time `json:"starts_at"   validate:"required"`
	EndsAt      time.Time `json:"ends_at"     validate:"required"`
}

// UpdateCompetitionRequest defines the payload for changing a competition.
type UpdateCompetitionRequest struct {
	Name        *string    `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string    `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// CreateTaskRequest defines the payload for adding a competition task.
type CreateTaskRequest struct {
	Name        string          `json:"name"         validate:"required,max=200"`
	Description string          `json:"description"`
	TargetValue decimal.Decimal `json:"target_value" validate:"gt=0,lte=9999999999.99"`
	Unit        string          `json:"unit"         validate:"required,max=30"`
	Points      int             `json:"points"       validate:"required,gt=0"`
}

// ProgressRequest defines the payload for reporting competition progress.
// An empty mode means set.
type ProgressRequest struct {
	TaskID uuid.UUID           `json:"task_id" validate:"required"`
	Value  decimal.Decimal     `json:"value"   validate:"gte=-9999999999.99,lte=9999999999.99"`
	Mode   domain.ProgressMode `json:"mode"    validate:"omitempty,oneof=set increment"`
}
