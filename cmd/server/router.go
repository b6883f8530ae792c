package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fitdash/fitdash-api/internal/api"
	apiMiddleware "github.com/fitdash/fitdash-api/internal/api/middleware"
	"github.com/fitdash/fitdash-api/internal/domain"
)

// setupRouter creates the router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.Metrics(app.metrics))
	if origins := app.config.Server.CORSAllowedOrigins; len(origins) > 0 {
		r.Use(apiMiddleware.CORS(origins))
	}

	s := app.services
	var (
		authHandler        = api.NewAuthHandler(s.users, app.jwtService, app.logger)
		gymHandler         = api.NewGymHandler(s.gyms, s.memberships)
		classHandler       = api.NewClassHandler(s.classes)
		bookingHandler     = api.NewBookingHandler(s.bookings)
		membershipHandler  = api.NewMembershipHandler(s.memberships)
		paymentHandler     = api.NewPaymentHandler(s.payments)
		exerciseHandler    = api.NewExerciseHandler(s.exercises)
		workoutHandler     = api.NewWorkoutHandler(s.workouts)
		dietHandler        = api.NewDietHandler(s.diet)
		competitionHandler = api.NewCompetitionHandler(s.competitions)
		authMiddleware     = apiMiddleware.NewAuthMiddleware(app.jwtService)
	)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Post("/payments/webhook", paymentHandler.Webhook)

		r.Get("/gyms", gymHandler.ListGyms)
		r.Get("/gyms/{id}", gymHandler.GetGym)
		r.Get("/gyms/{id}/classes", classHandler.ListClasses)
		r.Get("/classes/{id}", classHandler.GetClass)
		r.Get("/classes/{id}/schedules", classHandler.ListSchedules)
		r.Get("/exercises", exerciseHandler.List)
		r.Get("/exercises/{id}", exerciseHandler.Get)
		r.Get("/competitions", competitionHandler.List)
		r.Get("/competitions/{id}", competitionHandler.Get)
		r.Get("/competitions/{id}/leaderboard", competitionHandler.Leaderboard)

		// Owners see inactive plans of their own gyms.
		r.With(authMiddleware.OptionalAuthenticate).Get("/gyms/{id}/plans", gymHandler.ListPlans)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", authHandler.Me)
			r.Patch("/users/me", authHandler.UpdateMe)

			r.With(apiMiddleware.RequireRole(domain.RoleGymOwner)).Post("/gyms", gymHandler.CreateGym)
			r.Patch("/gyms/{id}", gymHandler.UpdateGym)
			r.Delete("/gyms/{id}", gymHandler.DeleteGym)
			r.Get("/gyms/{id}/members", gymHandler.ListMembers)
			r.Post("/gyms/{id}/plans", gymHandler.CreatePlan)
			r.Post("/gyms/{id}/classes", classHandler.CreateClass)
			r.Post("/gyms/{id}/competitions", competitionHandler.Create)

			r.Patch("/plans/{id}", gymHandler.UpdatePlan)
			r.Delete("/plans/{id}", gymHandler.DeletePlan)

			r.Patch("/classes/{id}", classHandler.UpdateClass)
			r.Delete("/classes/{id}", classHandler.DeleteClass)
			r.Post("/classes/{id}/schedules", classHandler.CreateSchedule)

			r.Delete("/schedules/{id}", classHandler.CancelSchedule)
			r.Get("/schedules/{id}/bookings", classHandler.ListScheduleBookings)

			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", bookingHandler.ListMine)
				r.Post("/", bookingHandler.Book)
				r.Delete("/{id}", bookingHandler.Cancel)
				r.Post("/{id}/attend", bookingHandler.Attend)
			})

			r.Route("/memberships", func(r chi.Router) {
				r.Get("/", membershipHandler.ListMine)
				r.Post("/", membershipHandler.Purchase)
				r.Get("/{id}", membershipHandler.Get)
				r.Post("/{id}/cancel", membershipHandler.Cancel)
			})

			r.Get("/payments", paymentHandler.ListMine)

			r.Group(func(r chi.Router) {
				r.Use(apiMiddleware.RequireRole(domain.RoleAdmin))
				r.Post("/exercises", exerciseHandler.Create)
				r.Patch("/exercises/{id}", exerciseHandler.Update)
				r.Delete("/exercises/{id}", exerciseHandler.Delete)
			})

			r.Route("/workouts", func(r chi.Router) {
				r.Get("/summary", workoutHandler.Summary)
				r.Route("/planned", func(r chi.Router) {
					r.Get("/", workoutHandler.ListPlanned)
					r.Post("/", workoutHandler.CreatePlanned)
					r.Get("/{id}", workoutHandler.GetPlanned)
					r.Put("/{id}", workoutHandler.ReplacePlanned)
					r.Delete("/{id}", workoutHandler.DeletePlanned)
				})
				r.Route("/actual", func(r chi.Router) {
					r.Get("/", workoutHandler.ListActual)
					r.Post("/", workoutHandler.LogActual)
					r.Get("/{id}", workoutHandler.GetActual)
					r.Delete("/{id}", workoutHandler.DeleteActual)
				})
			})

			r.Route("/diet", func(r chi.Router) {
				r.Get("/", dietHandler.List)
				r.Post("/", dietHandler.Create)
				r.Get("/summary", dietHandler.Summary)
				r.Put("/{id}", dietHandler.Replace)
				r.Delete("/{id}", dietHandler.Delete)
			})

			r.Patch("/competitions/{id}", competitionHandler.Update)
			r.Delete("/competitions/{id}", competitionHandler.Delete)
			r.Post("/competitions/{id}/tasks", competitionHandler.AddTask)
			r.Delete("/competitions/{id}/tasks/{taskId}", competitionHandler.DeleteTask)
			r.Post("/competitions/{id}/join", competitionHandler.Join)
			r.Delete("/competitions/{id}/join", competitionHandler.Leave)
			r.Post("/competitions/{id}/progress", competitionHandler.RecordProgress)
			r.Get("/competitions/{id}/progress", competitionHandler.MyProgress)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", app.metrics.Handler())

	return r
}
