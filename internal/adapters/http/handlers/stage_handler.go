package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// StageHandler handles HTTP requests for stage lifecycle, ordering, and
// budget-backed creation.
type StageHandler struct {
	svc ports.StageService
}

// NewStageHandler creates a new StageHandler with the given service port.
func NewStageHandler(svc ports.StageService) *StageHandler {
	return &StageHandler{svc: svc}
}

// CreateStage handles POST /api/v1/projects/{projectId}/stages.
func (h *StageHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseID(r, "projectId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CreateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	s := &stage.Stage{
		Name:         req.Name,
		Description:  req.Description,
		Order:        req.Order,
		PlannedStart: mustDate(req.PlannedStart),
		PlannedEnd:   mustDate(req.PlannedEnd),
	}
	initialBudget, _ := decimal.NewFromString(req.InitialBudget)

	created, bud, err := h.svc.Create(r.Context(), projectID, s, initialBudget)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.StageWithBudgetResponse{
		Stage:  dto.ToStageResponse(created),
		Budget: dto.ToBudgetResponse(bud),
	})
}

// ListStages handles GET /api/v1/projects/{projectId}/stages.
func (h *StageHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseID(r, "projectId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	stages, err := h.svc.ListByProject(r.Context(), projectID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStageListResponse(stages))
}

// GetStage handles GET /api/v1/stages/{id}.
func (h *StageHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	s, err := h.svc.Get(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStageResponse(s))
}

// UpdateStage handles PATCH /api/v1/stages/{id}.
func (h *StageHandler) UpdateStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, ports.StageUpdate{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStageResponse(updated))
}

// TransitionStage handles POST /api/v1/stages/{id}/transition.
func (h *StageHandler) TransitionStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.TransitionStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Transition(r.Context(), id, stage.Status(req.Status))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStageResponse(updated))
}

// MoveStage handles POST /api/v1/stages/{id}/move.
func (h *StageHandler) MoveStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.MoveStageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.svc.Move(r.Context(), id, req.Order); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteStage handles DELETE /api/v1/stages/{id}.
func (h *StageHandler) DeleteStage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
