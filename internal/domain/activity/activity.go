// Package activity defines the Activity entity: the unit of trackable work
// that drives stage progress.
package activity

import (
	"fmt"
	"strings"
	"time"

	"github.com/phaseline/phaseline/internal/domain"
)

// Activity belongs to exactly one stage, referenced by ID.
type Activity struct {
	ID            int64
	StageID       int64
	RequirementID *int64
	Name          string
	Kind          string
	PlannedStart  *time.Time
	PlannedEnd    *time.Time
	ActualStart   *time.Time
	ActualEnd     *time.Time
	Progress      int
	Status        Status
}

// Validate checks business rules for the Activity entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (a *Activity) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(a.Name) == "" {
		fields["name"] = domain.MsgRequired
	}
	if a.StageID <= 0 {
		fields["stage_id"] = fmt.Sprintf("must be positive, got %d", a.StageID)
	}
	if a.Progress < 0 || a.Progress > 100 {
		fields["progress"] = fmt.Sprintf("must be 0-100, got %d", a.Progress)
	}
	if !a.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", a.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// ApplyProgress sets the completion percentage and derives the lifecycle
// state as of the given day:
//
//   - 100 marks the activity completed and stamps ActualEnd. Re-applying 100
//     to a completed activity is idempotent.
//   - A value above 0 on a non-completed activity moves it to in_progress
//     and stamps ActualStart on the first advance.
//   - Zero leaves the state untouched: an activity that was in progress
//     stays in progress rather than reverting to pending.
//
// The caller owns range validation; values outside 0-100 return an error and
// leave the activity unchanged.
func (a *Activity) ApplyProgress(progress int, today time.Time) error {
	if progress < 0 || progress > 100 {
		return &domain.ValidationError{
			Fields: map[string]string{"progress": fmt.Sprintf("must be 0-100, got %d", progress)},
		}
	}

	a.Progress = progress

	switch {
	case progress == 100:
		a.Status = StatusCompleted
		end := today
		a.ActualEnd = &end
	case progress > 0 && a.Status != StatusCompleted:
		a.Status = StatusInProgress
		if a.ActualStart == nil {
			start := today
			a.ActualStart = &start
		}
	}

	return nil
}

// IsSettled reports whether the activity no longer blocks stage completion.
func (a *Activity) IsSettled() bool {
	return a.Status == StatusCompleted || a.Status == StatusCancelled
}
