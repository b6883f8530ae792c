package service

import (
	"context"
	"testing"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/mocks"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestExerciseService_WritesRequireAdmin(t *testing.T) {
	t.Parallel()

	exercises := &mocks.MockExerciseStore{}
	svc, err := NewExerciseService(exercises, discardLogger())
	require.NoError(t, err)

	in := ExerciseInput{Name: "Deadlift", MuscleGroup: domain.MuscleBack, Equipment: "barbell"}
	id := uuid.New()

	for _, actor := range []Actor{member(), owner()} {
		_, err := svc.Create(context.Background(), actor, in)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.Update(context.Background(), actor, id, in)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.ErrorIs(t, svc.Delete(context.Background(), actor, id), ErrForbidden)
	}
	exercises.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	exercises.On("Create", mock.Anything, mock.AnythingOfType("*domain.Exercise")).Return(nil)
	created, err := svc.Create(context.Background(), admin(), in)
	require.NoError(t, err)
	assert.Equal(t, "Deadlift", created.Name)
}

func TestExerciseService_Create(t *testing.T) {
	t.Parallel()

	exercises := &mocks.MockExerciseStore{}
	svc, err := NewExerciseService(exercises, discardLogger())
	require.NoError(t, err)

	exercises.On("Create", mock.Anything, mock.Anything).Return(store.ErrExerciseNameExists).Once()
	_, err = svc.Create(context.Background(), admin(), ExerciseInput{Name: "Squat", MuscleGroup: domain.MuscleLegs})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = svc.Create(context.Background(), admin(), ExerciseInput{Name: "Squat", MuscleGroup: "toes"})
	assert.ErrorIs(t, err, domain.ErrInvalidMuscleGroup)
}

func TestExerciseService_List(t *testing.T) {
	t.Parallel()

	exercises := &mocks.MockExerciseStore{}
	svc, err := NewExerciseService(exercises, discardLogger())
	require.NoError(t, err)

	page := store.NewPage(1, 20)
	_, _, err = svc.List(context.Background(), store.ExerciseFilter{MuscleGroup: "toes"}, page)
	assert.ErrorIs(t, err, domain.ErrValidation)

	filter := store.ExerciseFilter{Search: "press", MuscleGroup: domain.MuscleShoulders}
	exercises.On("List", mock.Anything, filter, page).Return([]domain.Exercise{{Name: "Overhead press"}}, 1, nil)

	list, total, err := svc.List(context.Background(), store.ExerciseFilter{Search: " press", MuscleGroup: domain.MuscleShoulders}, page)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}
