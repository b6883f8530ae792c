package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCompetitionName  = errors.New("competition name cannot be empty")
	ErrInvalidCompetitionEnd = errors.New("competition must end after it starts")
	ErrEmptyTaskName         = errors.New("task name cannot be empty")
	ErrInvalidTarget         = errors.New("target value must be positive")
	ErrInvalidPoints         = errors.New("points must be positive")
	ErrEmptyUnit             = errors.New("unit cannot be empty")
	ErrInvalidProgressMode   = errors.New("progress mode must be set or increment")
	ErrValueOutOfRange       = errors.New("value exceeds 9999999999.99")
)

// CompetitionStatus is derived from a competition's dates.
type CompetitionStatus string

// Competition statuses.
const (
	CompetitionUpcoming  CompetitionStatus = "upcoming"
	CompetitionActive    CompetitionStatus = "active"
	CompetitionCompleted CompetitionStatus = "completed"
)

// Competition is a gym-run challenge made of tasks.
type Competition struct {
	ID          uuid.UUID         `json:"id"`
	GymID       uuid.UUID         `json:"gym_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	StartsAt    time.Time         `json:"starts_at"`
	EndsAt      time.Time         `json:"ends_at"`
	Status      CompetitionStatus `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Tasks            []CompetitionTask `json:"tasks,omitempty"`
	ParticipantCount int               `json:"participant_count"`
}

// NewCompetition creates a competition for gymID.
func NewCompetition(gymID uuid.UUID, name, description string, startsAt, endsAt time.Time) (*Competition, error) {
	now := time.Now().UTC()
	c := &Competition{
		ID:          uuid.New(),
		GymID:       gymID,
		Name:        strings.TrimSpace(name),
		Description: description,
		StartsAt:    startsAt.UTC(),
		EndsAt:      endsAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.RefreshStatus(now)
	return c, nil
}

// Validate checks if the Competition has valid data.
func (c *Competition) Validate() error {
	if c.ID == uuid.Nil || c.GymID == uuid.Nil {
		return NewValidationError("id", "competition and gym IDs cannot be empty", ErrInvalidID)
	}
	if c.Name == "" {
		return NewValidationError("name", ErrEmptyCompetitionName.Error(), ErrEmptyCompetitionName)
	}
	if !c.EndsAt.After(c.StartsAt) {
		return NewValidationError("ends_at", ErrInvalidCompetitionEnd.Error(), ErrInvalidCompetitionEnd)
	}
	return nil
}

// StatusAt derives the status at now.
func (c *Competition) StatusAt(now time.Time) CompetitionStatus {
	switch {
	case now.Before(c.StartsAt):
		return CompetitionUpcoming
	case now.Before(c.EndsAt):
		return CompetitionActive
	default:
		return CompetitionCompleted
	}
}

// RefreshStatus stores the status derived at now.
func (c *Competition) RefreshStatus(now time.Time) {
	c.Status = c.StatusAt(now)
}

// CompetitionTask is a goal with a target value and a point value.
type CompetitionTask struct {
	ID            uuid.UUID       `json:"id"`
	CompetitionID uuid.UUID       `json:"competition_id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	TargetValue   decimal.Decimal `json:"target_value"`
	Unit          string          `json:"unit"`
	Points        int             `json:"points"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ValueScale is the number of decimal places kept for targets and progress.
const ValueScale = 2

// MaxValue is the largest target or progress value that can be stored.
var MaxValue = decimal.RequireFromString("9999999999.99")

// NewCompetitionTask creates a task for competitionID. target is rounded to
// ValueScale places.
func NewCompetitionTask(competitionID uuid.UUID, name, description string, target decimal.Decimal, unit string, points int) (*CompetitionTask, error) {
	t := &CompetitionTask{
		ID:            uuid.New(),
		CompetitionID: competitionID,
		Name:          strings.TrimSpace(name),
		Description:   description,
		TargetValue:   target.Round(ValueScale),
		Unit:          strings.TrimSpace(unit),
		Points:        points,
		CreatedAt:     time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks if the CompetitionTask has valid data.
func (t *CompetitionTask) Validate() error {
	if t.ID == uuid.Nil || t.CompetitionID == uuid.Nil {
		return NewValidationError("id", "task and competition IDs cannot be empty", ErrInvalidID)
	}
	if t.Name == "" {
		return NewValidationError("name", ErrEmptyTaskName.Error(), ErrEmptyTaskName)
	}
	if !t.TargetValue.IsPositive() {
		return NewValidationError("target_value", ErrInvalidTarget.Error(), ErrInvalidTarget)
	}
	if t.TargetValue.GreaterThan(MaxValue) {
		return NewValidationError("target_value", ErrValueOutOfRange.Error(), ErrValueOutOfRange)
	}
	if t.Unit == "" {
		return NewValidationError("unit", ErrEmptyUnit.Error(), ErrEmptyUnit)
	}
	if t.Points <= 0 {
		return NewValidationError("points", ErrInvalidPoints.Error(), ErrInvalidPoints)
	}
	return nil
}

// CompetitionParticipant is a user's entry in a competition.
// Rank is 1-based; a zero Rank means the participant has not been ranked yet.
type CompetitionParticipant struct {
	ID            uuid.UUID `json:"id"`
	CompetitionID uuid.UUID `json:"competition_id"`
	UserID        uuid.UUID `json:"user_id"`
	TotalPoints   int       `json:"total_points"`
	Rank          int       `json:"rank"`
	JoinedAt      time.Time `json:"joined_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	UserName       string `json:"user_name,omitempty"`
	CompletedTasks int    `json:"completed_tasks"`
}

// NewCompetitionParticipant enrols userID.
func NewCompetitionParticipant(competitionID, userID uuid.UUID, now time.Time) *CompetitionParticipant {
	return &CompetitionParticipant{
		ID:            uuid.New(),
		CompetitionID: competitionID,
		UserID:        userID,
		JoinedAt:      now.UTC(),
		UpdatedAt:     now.UTC(),
	}
}

// ProgressMode selects how a progress update combines with the stored value.
type ProgressMode string

// Progress modes.
const (
	ProgressSet       ProgressMode = "set"
	ProgressIncrement ProgressMode = "increment"
)

// Valid reports whether m is a known progress mode.
func (m ProgressMode) Valid() bool {
	return m == ProgressSet || m == ProgressIncrement
}

// TaskProgress tracks one participant's progress on one task.
type TaskProgress struct {
	ID            uuid.UUID       `json:"id"`
	ParticipantID uuid.UUID       `json:"participant_id"`
	TaskID        uuid.UUID       `json:"task_id"`
	Value         decimal.Decimal `json:"value"`
	PointsEarned  int             `json:"points_earned"`
	Completed     bool            `json:"completed"`
	UpdatedAt     time.Time       `json:"updated_at"`

	TaskName    string          `json:"task_name,omitempty"`
	TargetValue decimal.Decimal `json:"target_value"`
	Unit        string          `json:"unit,omitempty"`
	Points      int             `json:"points"`
}
