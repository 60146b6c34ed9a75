package handlers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/ports"
)

// BudgetHandler handles HTTP requests for the budget ledger. Budgets are
// created with their stage, so only reads and updates are exposed.
type BudgetHandler struct {
	svc ports.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler with the given service port.
func NewBudgetHandler(svc ports.BudgetService) *BudgetHandler {
	return &BudgetHandler{svc: svc}
}

// GetBudget handles GET /api/v1/budgets/{id}.
func (h *BudgetHandler) GetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	b, err := h.svc.Get(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBudgetResponse(b))
}

// GetStageBudget handles GET /api/v1/stages/{stageId}/budget.
func (h *BudgetHandler) GetStageBudget(w http.ResponseWriter, r *http.Request) {
	stageID, err := parseID(r, "stageId")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	b, err := h.svc.GetByStage(r.Context(), stageID)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBudgetResponse(b))
}

// UpdateBudget handles PATCH /api/v1/budgets/{id}.
func (h *BudgetHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateBudgetRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	var upd ports.BudgetUpdate
	if req.Approved != nil {
		approved, _ := decimal.NewFromString(*req.Approved)
		upd.Approved = &approved
	}
	if req.Spent != nil {
		spent, _ := decimal.NewFromString(*req.Spent)
		upd.Spent = &spent
	}

	updated, err := h.svc.Update(r.Context(), id, upd)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBudgetResponse(updated))
}
