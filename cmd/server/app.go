package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitdash/fitdash-api/internal/config"
	"github.com/fitdash/fitdash-api/internal/events"
	"github.com/fitdash/fitdash-api/internal/platform/metrics"
	"github.com/fitdash/fitdash-api/internal/platform/payment"
	"github.com/fitdash/fitdash-api/internal/platform/postgres"
	"github.com/fitdash/fitdash-api/internal/service"
	"github.com/fitdash/fitdash-api/internal/service/auth"
	"github.com/fitdash/fitdash-api/internal/store"
	"github.com/fitdash/fitdash-api/internal/task"
)

// application holds the shared dependencies of the server so they can be
// wired once and released together on shutdown.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	jwtService auth.JWTService
	services   services

	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// services groups the business services the HTTP handlers depend on.
type services struct {
	users        service.UserService
	gyms         service.GymService
	classes      service.ClassService
	bookings     service.BookingService
	memberships  service.MembershipService
	payments     service.PaymentService
	exercises    service.ExerciseService
	workouts     service.WorkoutService
	diet         service.DietService
	competitions service.CompetitionService
}

// newApplication wires stores, services, the payment provider and the
// background task runner. The runner is started before returning.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:       cfg,
		logger:       logger,
		db:           db,
		metrics:      metrics.New(),
		eventEmitter: events.NewInMemoryEventEmitter(logger),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		slog.Int("token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes))

	provider, err := newPaymentProvider(cfg.Payments, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("payment provider initialized", slog.String("provider", provider.Name()))

	tx := store.NewTxRunner(db)
	var (
		users        = postgres.NewPostgresUserStore(db, logger)
		gyms         = postgres.NewPostgresGymStore(db, logger)
		plans        = postgres.NewPostgresPlanStore(db, logger)
		classes      = postgres.NewPostgresClassStore(db, logger)
		schedules    = postgres.NewPostgresScheduleStore(db, logger)
		bookings     = postgres.NewPostgresBookingStore(db, logger)
		memberships  = postgres.NewPostgresMembershipStore(db, logger)
		payments     = postgres.NewPostgresPaymentStore(db, logger)
		exercises    = postgres.NewPostgresExerciseStore(db, logger)
		planned      = postgres.NewPostgresPlannedWorkoutStore(db, logger)
		actual       = postgres.NewPostgresActualWorkoutStore(db, logger)
		diet         = postgres.NewPostgresDietStore(db, logger)
		competitions = postgres.NewPostgresCompetitionStore(db, logger)
		participants = postgres.NewPostgresParticipantStore(db, logger)
		tasks        = postgres.NewPostgresTaskStore(db, logger)
	)

	s := &app.services
	if s.users, err = service.NewUserService(tx, users, auth.NewBcryptHasher(cfg.Auth.BCryptCost), logger); err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}
	if s.gyms, err = service.NewGymService(tx, gyms, plans, cfg.Payments.Currency, logger); err != nil {
		return nil, fmt.Errorf("failed to create gym service: %w", err)
	}
	if s.classes, err = service.NewClassService(tx, gyms, classes, schedules, bookings, logger); err != nil {
		return nil, fmt.Errorf("failed to create class service: %w", err)
	}
	if s.bookings, err = service.NewBookingService(
		tx, gyms, plans, schedules, bookings, memberships, app.metrics, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create booking service: %w", err)
	}
	if s.payments, err = service.NewPaymentService(
		tx, payments, memberships, plans, gyms, provider, app.eventEmitter, app.metrics, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create payment service: %w", err)
	}
	if s.memberships, err = service.NewMembershipService(tx, service.MembershipStores{
		Gyms:        gyms,
		Plans:       plans,
		Memberships: memberships,
		Payments:    payments,
		Bookings:    bookings,
		Schedules:   schedules,
	}, provider, s.payments, logger); err != nil {
		return nil, fmt.Errorf("failed to create membership service: %w", err)
	}
	if s.exercises, err = service.NewExerciseService(exercises, logger); err != nil {
		return nil, fmt.Errorf("failed to create exercise service: %w", err)
	}
	if s.workouts, err = service.NewWorkoutService(tx, exercises, planned, actual, logger); err != nil {
		return nil, fmt.Errorf("failed to create workout service: %w", err)
	}
	if s.diet, err = service.NewDietService(diet, logger); err != nil {
		return nil, fmt.Errorf("failed to create diet service: %w", err)
	}
	if s.competitions, err = service.NewCompetitionService(
		tx, gyms, competitions, participants, app.metrics, logger,
	); err != nil {
		return nil, fmt.Errorf("failed to create competition service: %w", err)
	}

	app.taskRunner, err = setupTaskRunner(app, tasks)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	logger.Info("application initialized successfully")
	return app, nil
}

// newPaymentProvider selects the configured payment provider.
func newPaymentProvider(cfg config.PaymentsConfig, logger *slog.Logger) (payment.Provider, error) {
	switch cfg.Provider {
	case payment.ProviderStripe:
		return payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret, nil, logger), nil
	case payment.ProviderManual:
		logger.Warn("manual payment provider settles every payment immediately; do not use in production")
		return payment.NewManualProvider(logger), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// setupTaskRunner registers the task factories, routes emitted events to the
// runner, schedules the membership expiry sweep and starts the workers.
func setupTaskRunner(app *application, tasks task.TaskStore) (*task.TaskRunner, error) {
	registry := task.NewRegistry()
	registry.Register(task.TaskTypePaymentSettlement, task.NewPaymentSettlementFactory(app.services.payments, app.logger))

	runner := task.NewTaskRunner(tasks, registry, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	app.eventEmitter.RegisterHandler(task.NewTaskFactoryEventHandler(registry, runner, app.logger))

	memberships := app.services.memberships
	sweepLogger := app.logger.With(slog.String("job", "membership_expiry"))
	if err := runner.AddPeriodicJob(task.PeriodicJob{
		Name:     "membership_expiry",
		Interval: time.Duration(app.config.Task.MembershipSweepIntervalMinutes) * time.Minute,
		Run: func(ctx context.Context) error {
			expired, err := memberships.ExpireDue(ctx)
			if err != nil {
				return err
			}
			if expired > 0 {
				sweepLogger.Info("expired memberships", slog.Int("count", expired))
			}
			return nil
		},
	}); err != nil {
		return nil, err
	}

	if err := runner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}
	return runner, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases background workers and the database.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
