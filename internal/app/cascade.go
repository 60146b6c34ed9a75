package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// recomputeStage re-derives a stage's progress from its activities and
// applies the auto-complete / auto-reopen rules, then continues the cascade
// upward to the project. It must run inside the same transaction as the
// mutation that triggered it.
//
// An empty stage keeps progress 0 and its current state: auto-completion
// only ever fires off real activity data.
func recomputeStage(ctx context.Context, tx ports.Tx, st *stage.Stage, today time.Time) error {
	activities, err := tx.Activities().ListByStage(ctx, st.ID)
	if err != nil {
		return fmt.Errorf("loading activities for stage %d: %w", st.ID, err)
	}

	st.Progress = stage.AggregateProgress(activities)

	if len(activities) > 0 {
		switch {
		case st.Progress == 100 && st.Status != stage.StatusCompleted:
			st.Status = stage.StatusCompleted
			end := today
			st.ActualEnd = &end
		case st.Progress < 100 && st.Status == stage.StatusCompleted:
			st.Status = stage.StatusInProgress
			st.ActualEnd = nil
		}
	}

	if err := tx.Stages().Update(ctx, st); err != nil {
		return fmt.Errorf("persisting stage %d: %w", st.ID, err)
	}

	return recomputeProject(ctx, tx, st.ProjectID, today)
}

// recomputeProject re-derives the project's lifecycle state from its stages:
// all stages terminal marks the project completed; a non-terminal stage on a
// completed project reopens it. A project with no stages is left untouched.
func recomputeProject(ctx context.Context, tx ports.Tx, projectID int64, today time.Time) error {
	p, err := tx.Projects().Get(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading project %d: %w", projectID, err)
	}

	stages, err := tx.Stages().ListByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("loading stages for project %d: %w", projectID, err)
	}
	if len(stages) == 0 {
		return nil
	}

	hasPending := false
	for i := range stages {
		if !stages[i].Status.IsTerminal() {
			hasPending = true
			break
		}
	}

	switch {
	case !hasPending && p.Status != project.StatusCompleted:
		p.Status = project.StatusCompleted
		end := today
		p.ActualEnd = &end
	case hasPending && p.Status == project.StatusCompleted:
		p.Status = project.StatusInProgress
		p.ActualEnd = nil
	default:
		return nil
	}

	if err := tx.Projects().Update(ctx, p); err != nil {
		return fmt.Errorf("persisting project %d: %w", projectID, err)
	}
	return nil
}

// checkCeiling enforces the project budget ceiling for an allocation of
// requested. The stage's previous approved value is excluded from the
// running total so re-allocations compare against what the rest of the
// project actually holds. Must run in the same transaction as the budget
// write: the sum it reads is exactly what a concurrent allocator races on.
func checkCeiling(ctx context.Context, tx ports.Tx, p *project.Project, previous, requested decimal.Decimal) error {
	if requested.IsNegative() {
		return fmt.Errorf("%w: requested %s", domain.ErrInvalidAmount, requested)
	}

	total, err := tx.Budgets().SumApprovedByProject(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("summing approved budgets for project %d: %w", p.ID, err)
	}

	projected := total.Sub(previous).Add(requested)
	if projected.GreaterThan(p.BudgetCeiling) {
		available := p.BudgetCeiling.Sub(total.Sub(previous))
		return fmt.Errorf("%w: ceiling %s, available %s, requested %s",
			domain.ErrBudgetExceeded, p.BudgetCeiling, available, requested)
	}
	return nil
}

// checkStartable verifies the date and project preconditions for a stage
// entering in_progress, shared between explicit transitions and the
// first-activity auto-start. The explicit path additionally requires the
// stage to have activities; the auto-start path is triggered by the activity
// being created, so that check does not apply there.
func checkStartable(p *project.Project, st *stage.Stage, today time.Time) error {
	if p.Status != project.StatusInProgress {
		return fmt.Errorf("%w: project %d is %s", domain.ErrProjectNotActive, p.ID, p.Status)
	}
	if !st.StartableOn(today) {
		return fmt.Errorf("%w: planned start %s", domain.ErrTooEarly, st.PlannedStart.Format("2006-01-02"))
	}
	return nil
}
