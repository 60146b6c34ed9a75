package app

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/adapters/store/memory"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// testToday is the fixed clock every service in a test env runs on.
var testToday = time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// env wires all four services onto one in-memory store with a fixed clock.
type env struct {
	store      *memory.Store
	projects   *ProjectService
	stages     *StageService
	activities *ActivityService
	budgets    *BudgetService
}

func newEnv() *env {
	st := memory.New()
	e := &env{
		store:      st,
		projects:   NewProjectService(st, discardLogger()),
		stages:     NewStageService(st, discardLogger()),
		activities: NewActivityService(st, discardLogger()),
		budgets:    NewBudgetService(st, discardLogger()),
	}
	now := func() time.Time { return testToday }
	e.projects.now = now
	e.stages.now = now
	e.activities.now = now
	e.budgets.now = now
	return e
}

func (e *env) createProject(t *testing.T, ceiling int64) *project.Project {
	t.Helper()

	p, err := e.projects.Create(context.Background(), &project.Project{
		ClientID:      1,
		Name:          "Test project",
		StartDate:     testToday.AddDate(0, -1, 0),
		BudgetCeiling: decimal.NewFromInt(ceiling),
	})
	if err != nil {
		t.Fatalf("creating fixture project: %v", err)
	}
	return p
}

// createStage adds a stage whose planned window starts today, so it is
// immediately startable.
func (e *env) createStage(t *testing.T, projectID int64, order int, approved int64) *stage.Stage {
	t.Helper()

	st, _, err := e.stages.Create(context.Background(), projectID, &stage.Stage{
		Name:         "Test stage",
		Order:        order,
		PlannedStart: testToday,
		PlannedEnd:   testToday.AddDate(0, 1, 0),
	}, decimal.NewFromInt(approved))
	if err != nil {
		t.Fatalf("creating fixture stage: %v", err)
	}
	return st
}

func (e *env) createActivity(t *testing.T, stageID int64, name string) *activity.Activity {
	t.Helper()

	a, err := e.activities.Create(context.Background(), stageID, &activity.Activity{
		Name: name,
		Kind: "task",
	})
	if err != nil {
		t.Fatalf("creating fixture activity: %v", err)
	}
	return a
}

func (e *env) getProject(t *testing.T, id int64) *project.Project {
	t.Helper()

	p, err := e.projects.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("loading project %d: %v", id, err)
	}
	return p
}

func (e *env) getStage(t *testing.T, id int64) *stage.Stage {
	t.Helper()

	st, err := e.stages.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("loading stage %d: %v", id, err)
	}
	return st
}

func (e *env) getBudget(t *testing.T, stageID int64) *budget.Budget {
	t.Helper()

	b, err := e.budgets.GetByStage(context.Background(), stageID)
	if err != nil {
		t.Fatalf("loading budget of stage %d: %v", stageID, err)
	}
	return b
}

// setProgress is the shorthand for advancing an activity in fixtures.
func (e *env) setProgress(t *testing.T, activityID int64, progress int) {
	t.Helper()

	if _, err := e.activities.SetProgress(context.Background(), activityID, progress); err != nil {
		t.Fatalf("setting progress of activity %d to %d: %v", activityID, progress, err)
	}
}

// setProjectStatus seeds a lifecycle state the public API derives rather
// than accepts, such as cancelled.
func (e *env) setProjectStatus(t *testing.T, id int64, status project.Status) {
	t.Helper()

	err := e.store.WithinTx(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.Projects().Get(ctx, id)
		if err != nil {
			return err
		}
		p.Status = status
		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		t.Fatalf("seeding project %d status %s: %v", id, status, err)
	}
}

func strPtr(s string) *string { return &s }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }
