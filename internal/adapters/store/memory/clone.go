package memory

import (
	"time"

	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

// Entities are stored and returned by value, with pointer fields reallocated
// so callers can never reach into store state through a shared pointer.

func timePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func int64Ptr(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneProject(p project.Project) project.Project {
	p.PlannedEnd = timePtr(p.PlannedEnd)
	p.ActualEnd = timePtr(p.ActualEnd)
	return p
}

func cloneStage(s stage.Stage) stage.Stage {
	s.ActualStart = timePtr(s.ActualStart)
	s.ActualEnd = timePtr(s.ActualEnd)
	return s
}

func cloneActivity(a activity.Activity) activity.Activity {
	a.RequirementID = int64Ptr(a.RequirementID)
	a.PlannedStart = timePtr(a.PlannedStart)
	a.PlannedEnd = timePtr(a.PlannedEnd)
	a.ActualStart = timePtr(a.ActualStart)
	a.ActualEnd = timePtr(a.ActualEnd)
	return a
}

func cloneBudget(b budget.Budget) budget.Budget {
	b.ApprovedAt = timePtr(b.ApprovedAt)
	return b
}
