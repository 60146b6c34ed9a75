package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

type projectRepo struct {
	st *state
}

func (r *projectRepo) Get(_ context.Context, id int64) (*project.Project, error) {
	p, ok := r.st.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	c := cloneProject(p)
	return &c, nil
}

func (r *projectRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.st.projects[id]
	return ok, nil
}

func (r *projectRepo) List(_ context.Context) ([]project.Project, error) {
	out := make([]project.Project, 0, len(r.st.projects))
	for _, p := range r.st.projects {
		out = append(out, cloneProject(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *projectRepo) Create(_ context.Context, p *project.Project) error {
	p.ID = r.st.alloc()
	r.st.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *projectRepo) Update(_ context.Context, p *project.Project) error {
	if _, ok := r.st.projects[p.ID]; !ok {
		return fmt.Errorf("project %d: %w", p.ID, domain.ErrNotFound)
	}
	r.st.projects[p.ID] = cloneProject(*p)
	return nil
}

func (r *projectRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.projects[id]; !ok {
		return fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	delete(r.st.projects, id)
	return nil
}

type stageRepo struct {
	st *state
}

func (r *stageRepo) Get(_ context.Context, id int64) (*stage.Stage, error) {
	s, ok := r.st.stages[id]
	if !ok {
		return nil, fmt.Errorf("stage %d: %w", id, domain.ErrNotFound)
	}
	c := cloneStage(s)
	return &c, nil
}

func (r *stageRepo) ListByProject(_ context.Context, projectID int64) ([]stage.Stage, error) {
	var out []stage.Stage
	for _, s := range r.st.stages {
		if s.ProjectID == projectID {
			out = append(out, cloneStage(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *stageRepo) OrderTaken(_ context.Context, projectID int64, order int) (bool, error) {
	for _, s := range r.st.stages {
		if s.ProjectID == projectID && s.Order == order {
			return true, nil
		}
	}
	return false, nil
}

func (r *stageRepo) ShiftOrdersUp(_ context.Context, projectID int64, fromOrder int) error {
	for id, s := range r.st.stages {
		if s.ProjectID == projectID && s.Order >= fromOrder {
			s.Order++
			r.st.stages[id] = s
		}
	}
	return nil
}

func (r *stageRepo) Create(_ context.Context, s *stage.Stage) error {
	s.ID = r.st.alloc()
	r.st.stages[s.ID] = cloneStage(*s)
	return nil
}

func (r *stageRepo) Update(_ context.Context, s *stage.Stage) error {
	if _, ok := r.st.stages[s.ID]; !ok {
		return fmt.Errorf("stage %d: %w", s.ID, domain.ErrNotFound)
	}
	r.st.stages[s.ID] = cloneStage(*s)
	return nil
}

func (r *stageRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.stages[id]; !ok {
		return fmt.Errorf("stage %d: %w", id, domain.ErrNotFound)
	}
	delete(r.st.stages, id)
	return nil
}

type activityRepo struct {
	st *state
}

func (r *activityRepo) Get(_ context.Context, id int64) (*activity.Activity, error) {
	a, ok := r.st.activities[id]
	if !ok {
		return nil, fmt.Errorf("activity %d: %w", id, domain.ErrNotFound)
	}
	c := cloneActivity(a)
	return &c, nil
}

func (r *activityRepo) ListByStage(_ context.Context, stageID int64) ([]activity.Activity, error) {
	var out []activity.Activity
	for _, a := range r.st.activities {
		if a.StageID == stageID {
			out = append(out, cloneActivity(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *activityRepo) CountByStage(_ context.Context, stageID int64) (int, error) {
	n := 0
	for _, a := range r.st.activities {
		if a.StageID == stageID {
			n++
		}
	}
	return n, nil
}

func (r *activityRepo) CountUnsettledByStage(_ context.Context, stageID int64) (int, error) {
	n := 0
	for _, a := range r.st.activities {
		if a.StageID == stageID && !a.IsSettled() {
			n++
		}
	}
	return n, nil
}

func (r *activityRepo) Create(_ context.Context, a *activity.Activity) error {
	a.ID = r.st.alloc()
	r.st.activities[a.ID] = cloneActivity(*a)
	return nil
}

func (r *activityRepo) Update(_ context.Context, a *activity.Activity) error {
	if _, ok := r.st.activities[a.ID]; !ok {
		return fmt.Errorf("activity %d: %w", a.ID, domain.ErrNotFound)
	}
	r.st.activities[a.ID] = cloneActivity(*a)
	return nil
}

func (r *activityRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.activities[id]; !ok {
		return fmt.Errorf("activity %d: %w", id, domain.ErrNotFound)
	}
	delete(r.st.activities, id)
	return nil
}

func (r *activityRepo) DeleteByStage(_ context.Context, stageID int64) error {
	for id, a := range r.st.activities {
		if a.StageID == stageID {
			delete(r.st.activities, id)
		}
	}
	return nil
}

type budgetRepo struct {
	st *state
}

func (r *budgetRepo) Get(_ context.Context, id int64) (*budget.Budget, error) {
	b, ok := r.st.budgets[id]
	if !ok {
		return nil, fmt.Errorf("budget %d: %w", id, domain.ErrNotFound)
	}
	c := cloneBudget(b)
	return &c, nil
}

func (r *budgetRepo) GetByStage(_ context.Context, stageID int64) (*budget.Budget, error) {
	for _, b := range r.st.budgets {
		if b.StageID == stageID {
			c := cloneBudget(b)
			return &c, nil
		}
	}
	return nil, fmt.Errorf("budget for stage %d: %w", stageID, domain.ErrNotFound)
}

func (r *budgetRepo) SumApprovedByProject(_ context.Context, projectID int64) (decimal.Decimal, error) {
	return r.sumByProject(projectID, func(b budget.Budget) decimal.Decimal { return b.Approved })
}

func (r *budgetRepo) SumSpentByProject(_ context.Context, projectID int64) (decimal.Decimal, error) {
	return r.sumByProject(projectID, func(b budget.Budget) decimal.Decimal { return b.Spent })
}

func (r *budgetRepo) sumByProject(projectID int64, amount func(budget.Budget) decimal.Decimal) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, b := range r.st.budgets {
		s, ok := r.st.stages[b.StageID]
		if ok && s.ProjectID == projectID {
			total = total.Add(amount(b))
		}
	}
	return total, nil
}

func (r *budgetRepo) Create(_ context.Context, b *budget.Budget) error {
	b.ID = r.st.alloc()
	r.st.budgets[b.ID] = cloneBudget(*b)
	return nil
}

func (r *budgetRepo) Update(_ context.Context, b *budget.Budget) error {
	if _, ok := r.st.budgets[b.ID]; !ok {
		return fmt.Errorf("budget %d: %w", b.ID, domain.ErrNotFound)
	}
	r.st.budgets[b.ID] = cloneBudget(*b)
	return nil
}

func (r *budgetRepo) DeleteByStage(_ context.Context, stageID int64) error {
	for id, b := range r.st.budgets {
		if b.StageID == stageID {
			delete(r.st.budgets, id)
		}
	}
	return nil
}
