//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/fitdash/fitdash-api/internal/domain"
	"github.com/fitdash/fitdash-api/internal/platform/postgres"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/fitdash/fitdash-api/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, tx *sql.Tx, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(uuid.NewString()+"@example.com", "Test User", "correct-horse-battery", role)
	require.NoError(t, err)
	u.HashedPassword = "$2a$10$integrationhash"
	require.NoError(t, postgres.NewPostgresUserStore(tx, nil).Create(context.Background(), u))
	return u
}

func createGym(t *testing.T, tx *sql.Tx, ownerID uuid.UUID) *domain.Gym {
	t.Helper()
	g, err := domain.NewGym(ownerID, "Iron Temple", "1 Main St", "", nil)
	require.NoError(t, err)
	require.NoError(t, postgres.NewPostgresGymStore(tx, nil).Create(context.Background(), g))
	return g
}

func TestUserStore_EmailLookupIgnoresCase(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewPostgresUserStore(tx, nil)
		u := createUser(t, tx, domain.RoleMember)

		got, err := users.GetByEmail(ctx, strings.ToUpper(u.Email))
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		dup := *u
		dup.ID = uuid.New()
		assert.ErrorIs(t, users.Create(ctx, &dup), store.ErrEmailExists)
	})
}

func TestScheduleStore_BookedCountStaysWithinCapacity(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := createUser(t, tx, domain.RoleGymOwner)
		gym := createGym(t, tx, owner.ID)

		class, err := domain.NewGymClass(gym.ID, "Spin", "", "", 2, 45)
		require.NoError(t, err)
		require.NoError(t, postgres.NewPostgresClassStore(tx, nil).Create(ctx, class))

		now := time.Now().UTC()
		schedule, err := domain.NewClassSchedule(class, now.Add(24*time.Hour), 0, now)
		require.NoError(t, err)

		schedules := postgres.NewPostgresScheduleStore(tx, nil)
		require.NoError(t, schedules.Create(ctx, schedule))

		require.NoError(t, schedules.AdjustBookedCount(ctx, schedule.ID, 1))
		require.NoError(t, schedules.AdjustBookedCount(ctx, schedule.ID, 1))

		got, err := schedules.GetByID(ctx, schedule.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.BookedCount)
		assert.Equal(t, 0, got.SpotsLeft())

		// The next statement would abort the transaction, so run it in a savepoint.
		_, err = tx.ExecContext(ctx, "SAVEPOINT over_capacity")
		require.NoError(t, err)
		assert.ErrorIs(t, schedules.AdjustBookedCount(ctx, schedule.ID, 1), store.ErrInvalidEntity)
		_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT over_capacity")
		require.NoError(t, err)

		assert.ErrorIs(t, schedules.AdjustBookedCount(ctx, uuid.New(), 1), store.ErrScheduleNotFound)
	})
}

func TestParticipantStore_JoinOnce(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := createUser(t, tx, domain.RoleGymOwner)
		member := createUser(t, tx, domain.RoleMember)
		gym := createGym(t, tx, owner.ID)

		now := time.Now().UTC()
		comp, err := domain.NewCompetition(gym.ID, "March Madness", "", now.Add(-time.Hour), now.Add(72*time.Hour))
		require.NoError(t, err)
		require.NoError(t, postgres.NewPostgresCompetitionStore(tx, nil).Create(ctx, comp))

		participants := postgres.NewPostgresParticipantStore(tx, nil)
		require.NoError(t, participants.Add(ctx, domain.NewCompetitionParticipant(comp.ID, member.ID, now)))

		_, err = tx.ExecContext(ctx, "SAVEPOINT duplicate_join")
		require.NoError(t, err)
		err = participants.Add(ctx, domain.NewCompetitionParticipant(comp.ID, member.ID, now))
		assert.ErrorIs(t, err, store.ErrAlreadyParticipant)
		_, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT duplicate_join")
		require.NoError(t, err)

		list, err := participants.List(ctx, comp.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, member.ID, list[0].UserID)
		assert.Equal(t, member.Name, list[0].UserName)

		require.NoError(t, participants.Remove(ctx, comp.ID, member.ID))
		_, err = participants.Get(ctx, comp.ID, member.ID)
		assert.ErrorIs(t, err, store.ErrParticipantNotFound)
	})
}

func TestGymStore_DeleteCascades(t *testing.T) {
	t.Parallel()
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		owner := createUser(t, tx, domain.RoleGymOwner)
		gym := createGym(t, tx, owner.ID)

		class, err := domain.NewGymClass(gym.ID, "Yoga", "", "", 10, 60)
		require.NoError(t, err)
		classes := postgres.NewPostgresClassStore(tx, nil)
		require.NoError(t, classes.Create(ctx, class))

		require.NoError(t, postgres.NewPostgresGymStore(tx, nil).Delete(ctx, gym.ID))

		_, err = classes.GetByID(ctx, class.ID)
		assert.ErrorIs(t, err, store.ErrClassNotFound)
	})
}
