// Package stage defines the Stage entity, its lifecycle state machine, the
// progress aggregation rule, and the order resequencing algorithm. Stages are
// the middle of the hierarchy: ordered phases of a project, each owning
// activities and one budget.
package stage

import (
	"fmt"
	"strings"
	"time"

	"github.com/phaseline/phaseline/internal/domain"
)

// Stage is an ordered phase of a project. Order is a positive integer unique
// within the owning project.
type Stage struct {
	ID           int64
	ProjectID    int64
	Name         string
	Description  string
	Order        int
	PlannedStart time.Time
	PlannedEnd   time.Time
	ActualStart  *time.Time
	ActualEnd    *time.Time
	Progress     int
	Status       Status
}

// Validate checks business rules for the Stage entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (s *Stage) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(s.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if s.ProjectID <= 0 {
		fields["project_id"] = fmt.Sprintf("must be positive, got %d", s.ProjectID)
	}
	if s.Order < 1 {
		fields["order"] = fmt.Sprintf("must be at least 1, got %d", s.Order)
	}
	if s.PlannedStart.IsZero() {
		fields["planned_start"] = domain.MsgRequired
	}
	if s.PlannedEnd.IsZero() {
		fields["planned_end"] = domain.MsgRequired
	}
	if !s.PlannedStart.IsZero() && !s.PlannedEnd.IsZero() && s.PlannedEnd.Before(s.PlannedStart) {
		fields["planned_end"] = "must not be before planned_start"
	}
	if s.Progress < 0 || s.Progress > 100 {
		fields["progress"] = fmt.Sprintf("must be 0-100, got %d", s.Progress)
	}
	if !s.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", s.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// startableWindow is how far ahead of the planned start a stage may begin.
const startableWindow = 7 * 24 * time.Hour

// StartableOn reports whether the stage may enter in_progress on the given
// day. Starting is rejected when today is more than 7 days before the
// planned start date.
func (s *Stage) StartableOn(today time.Time) bool {
	return !today.Before(s.PlannedStart.Add(-startableWindow))
}
