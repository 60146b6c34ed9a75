// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phaseline/phaseline/internal/adapters/http/handlers"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given.
func NewRouter(
	projectHandler *handlers.ProjectHandler,
	stageHandler *handlers.StageHandler,
	activityHandler *handlers.ActivityHandler,
	budgetHandler *handlers.BudgetHandler,
	healthHandler *handlers.HealthHandler,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		// Project CRUD and dashboard.
		r.Get("/projects", projectHandler.ListProjects)
		r.Post("/projects", projectHandler.CreateProject)
		r.Get("/projects/{id}", projectHandler.GetProject)
		r.Patch("/projects/{id}", projectHandler.UpdateProject)
		r.Delete("/projects/{id}", projectHandler.DeleteProject)
		r.Get("/projects/{id}/summary", projectHandler.GetProjectSummary)

		// Stages nest under their project for creation and listing.
		r.Post("/projects/{projectId}/stages", stageHandler.CreateStage)
		r.Get("/projects/{projectId}/stages", stageHandler.ListStages)

		// Stage lifecycle and ordering.
		r.Get("/stages/{id}", stageHandler.GetStage)
		r.Patch("/stages/{id}", stageHandler.UpdateStage)
		r.Post("/stages/{id}/transition", stageHandler.TransitionStage)
		r.Post("/stages/{id}/move", stageHandler.MoveStage)
		r.Delete("/stages/{id}", stageHandler.DeleteStage)

		// Activities nest under their stage for creation and listing.
		r.Post("/stages/{stageId}/activities", activityHandler.CreateActivity)
		r.Get("/stages/{stageId}/activities", activityHandler.ListActivities)

		// Activity CRUD and progress tracking.
		r.Get("/activities/{id}", activityHandler.GetActivity)
		r.Patch("/activities/{id}", activityHandler.UpdateActivity)
		r.Delete("/activities/{id}", activityHandler.DeleteActivity)
		r.Post("/activities/{id}/progress", activityHandler.SetActivityProgress)
		r.Post("/activities/progress", activityHandler.BulkSetProgress)

		// Budget ledger.
		r.Get("/stages/{stageId}/budget", budgetHandler.GetStageBudget)
		r.Get("/budgets/{id}", budgetHandler.GetBudget)
		r.Patch("/budgets/{id}", budgetHandler.UpdateBudget)
	})

	return r
}
