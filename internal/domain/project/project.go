// Package project defines the Project aggregate root: the top-level unit of
// work carrying a budget ceiling and a derived lifecycle state.
package project

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
)

// Project is the top of the hierarchy. It owns its stages exclusively:
// deleting a project deletes its stages, their budgets, and their activities.
// Stage children are looked up through the store by ProjectID, never held as
// live back-pointers.
type Project struct {
	ID            int64
	ClientID      int64
	Name          string
	Description   string
	Methodology   string
	Kind          string
	Priority      string
	StartDate     time.Time
	PlannedEnd    *time.Time
	ActualEnd     *time.Time
	BudgetCeiling decimal.Decimal
	Status        Status
}

// Validate checks business rules for the Project entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (p *Project) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if p.ClientID <= 0 {
		fields["client_id"] = fmt.Sprintf("must be positive, got %d", p.ClientID)
	}
	if p.StartDate.IsZero() {
		fields["start_date"] = domain.MsgRequired
	}
	if p.BudgetCeiling.IsNegative() {
		fields["budget_ceiling"] = fmt.Sprintf("must not be negative, got %s", p.BudgetCeiling)
	}
	if !p.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", p.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// AcceptsNewStages reports whether stages may still be added to the project.
// Cancelled and closed projects are frozen.
func (p *Project) AcceptsNewStages() bool {
	return p.Status != StatusCancelled && p.Status != StatusClosed
}
