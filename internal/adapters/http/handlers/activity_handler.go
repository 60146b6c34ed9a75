package handlers

import (
	"net/http"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/ports"
)

// ActivityHandler handles HTTP requests for activity CRUD and progress
// tracking.
type ActivityHandler struct {
	svc ports.ActivityService
}

// NewActivityHandler creates a new ActivityHandler with the given service port.
func NewActivityHandler(svc ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{svc: svc}
}

// CreateActivity handles POST /api/v1/stages/{stageId}/activities.
func (h *ActivityHandler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	stageID, err := parseID(r, "stageId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.CreateActivityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	a := &activity.Activity{
		RequirementID: req.RequirementID,
		Name:          req.Name,
		Kind:          req.Kind,
		PlannedStart:  optionalDate(req.PlannedStart),
		PlannedEnd:    optionalDate(req.PlannedEnd),
	}

	created, err := h.svc.Create(r.Context(), stageID, a)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToActivityResponse(created))
}

// ListActivities handles GET /api/v1/stages/{stageId}/activities.
func (h *ActivityHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	stageID, err := parseID(r, "stageId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	activities, err := h.svc.ListByStage(r.Context(), stageID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActivityListResponse(activities))
}

// GetActivity handles GET /api/v1/activities/{id}.
func (h *ActivityHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	a, err := h.svc.Get(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActivityResponse(a))
}

// UpdateActivity handles PATCH /api/v1/activities/{id}.
func (h *ActivityHandler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateActivityRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, ports.ActivityUpdate{
		Name:         req.Name,
		Kind:         req.Kind,
		PlannedStart: optionalDate(req.PlannedStart),
		PlannedEnd:   optionalDate(req.PlannedEnd),
	})
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActivityResponse(updated))
}

// DeleteActivity handles DELETE /api/v1/activities/{id}.
func (h *ActivityHandler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
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

// SetActivityProgress handles POST /api/v1/activities/{id}/progress.
func (h *ActivityHandler) SetActivityProgress(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.SetProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.SetProgress(r.Context(), id, *req.Progress)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToActivityResponse(updated))
}

// BulkSetProgress handles POST /api/v1/activities/progress.
// Partial success returns 200 with per-item errors in the body.
func (h *ActivityHandler) BulkSetProgress(w http.ResponseWriter, r *http.Request) {
	var req dto.BulkProgressRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updates := make([]ports.ProgressUpdate, len(req.Updates))
	for i, u := range req.Updates {
		updates[i] = ports.ProgressUpdate{
			ActivityID: u.ActivityID,
			Progress:   u.Progress,
		}
	}

	result, err := h.svc.BulkSetProgress(r.Context(), updates)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBulkProgressResponse(result))
}
