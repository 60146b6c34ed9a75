// Package memory provides an in-memory implementation of the store port.
// Transactions hold one big lock for their whole lifetime and roll back by
// restoring a snapshot, which trivially satisfies the serialization contract
// of ports.Store. Used by the engine's tests and the local profile.
package memory

import (
	"context"
	"sync"

	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// Compile-time checks.
var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Store is a mutex-serialized in-memory record store.
type Store struct {
	mu    sync.Mutex
	state *state
}

// state is the full dataset. It is cloned at transaction start so a failed
// transaction can restore it wholesale.
type state struct {
	projects   map[int64]project.Project
	stages     map[int64]stage.Stage
	activities map[int64]activity.Activity
	budgets    map[int64]budget.Budget
	nextID     int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{state: &state{
		projects:   make(map[int64]project.Project),
		stages:     make(map[int64]stage.Stage),
		activities: make(map[int64]activity.Activity),
		budgets:    make(map[int64]budget.Budget),
		nextID:     1,
	}}
}

// WithinTx runs fn under the store lock. On error the pre-transaction
// snapshot is restored, discarding every write fn made.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	snapshot := s.state.clone()
	if err := fn(ctx, &tx{st: s.state}); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// HealthCheck implements ports.HealthChecker. The in-memory store is always
// healthy.
func (s *Store) HealthCheck(_ context.Context) error { return nil }

func (st *state) clone() *state {
	c := &state{
		projects:   make(map[int64]project.Project, len(st.projects)),
		stages:     make(map[int64]stage.Stage, len(st.stages)),
		activities: make(map[int64]activity.Activity, len(st.activities)),
		budgets:    make(map[int64]budget.Budget, len(st.budgets)),
		nextID:     st.nextID,
	}
	for id, p := range st.projects {
		c.projects[id] = cloneProject(p)
	}
	for id, s := range st.stages {
		c.stages[id] = cloneStage(s)
	}
	for id, a := range st.activities {
		c.activities[id] = cloneActivity(a)
	}
	for id, b := range st.budgets {
		c.budgets[id] = cloneBudget(b)
	}
	return c
}

func (st *state) alloc() int64 {
	id := st.nextID
	st.nextID++
	return id
}

// tx exposes the repositories of one open transaction. The store lock is
// held for the transaction's whole lifetime, so repos touch state directly.
type tx struct {
	st *state
}

func (t *tx) Projects() ports.ProjectRepo    { return &projectRepo{st: t.st} }
func (t *tx) Stages() ports.StageRepo        { return &stageRepo{st: t.st} }
func (t *tx) Activities() ports.ActivityRepo { return &activityRepo{st: t.st} }
func (t *tx) Budgets() ports.BudgetRepo      { return &budgetRepo{st: t.st} }
