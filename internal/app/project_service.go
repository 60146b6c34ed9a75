// Package app implements the cascading consistency engine behind the service
// ports: progress aggregation, the stage state machine, the budget ledger,
// and stage ordering. Every mutating operation runs inside a single store
// transaction spanning the full upward cascade, so no caller can observe a
// partially cascaded state.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// Compile-time check that ProjectService implements ports.ProjectService.
var _ ports.ProjectService = (*ProjectService)(nil)

// ProjectService implements ports.ProjectService.
type ProjectService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewProjectService creates a ProjectService on top of the given store.
func NewProjectService(store ports.Store, logger *slog.Logger) *ProjectService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ProjectService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and creates a new project. New projects start active.
func (s *ProjectService) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	s.logger.InfoContext(ctx, "creating project", slog.String("name", p.Name))

	if p.Status == "" {
		p.Status = project.StatusInProgress
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		return tx.Projects().Create(ctx, p)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create project",
			slog.String("operation", "Create"),
			slog.Any("error", err),
		)
		return nil, err
	}

	return p, nil
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]project.Project, error) {
	var projects []project.Project
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		projects, err = tx.Projects().List(ctx)
		return err
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list projects",
			slog.String("operation", "List"),
			slog.Any("error", err),
		)
		return nil, err
	}
	return projects, nil
}

// Get returns a single project by ID.
func (s *ProjectService) Get(ctx context.Context, id int64) (*project.Project, error) {
	var p *project.Project
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		p, err = tx.Projects().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies the non-nil fields of upd to the project's metadata.
func (s *ProjectService) Update(ctx context.Context, id int64, upd ports.ProjectUpdate) (*project.Project, error) {
	s.logger.InfoContext(ctx, "updating project", slog.Int64("id", id))

	var p *project.Project
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		p, err = tx.Projects().Get(ctx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			p.Name = *upd.Name
		}
		if upd.Description != nil {
			p.Description = *upd.Description
		}
		if upd.Methodology != nil {
			p.Methodology = *upd.Methodology
		}
		if upd.Kind != nil {
			p.Kind = *upd.Kind
		}
		if upd.Priority != nil {
			p.Priority = *upd.Priority
		}
		if upd.PlannedEnd != nil {
			p.PlannedEnd = upd.PlannedEnd
		}

		if err := p.Validate(); err != nil {
			return err
		}
		return tx.Projects().Update(ctx, p)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update project",
			slog.String("operation", "Update"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return p, nil
}

// Delete removes the project and everything it owns. The cascade is an
// explicit ordered routine (activities, then budget, then stage, then the
// project) so a failure at any step rolls back the whole delete.
func (s *ProjectService) Delete(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting project", slog.Int64("id", id))

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Projects().Get(ctx, id); err != nil {
			return err
		}

		stages, err := tx.Stages().ListByProject(ctx, id)
		if err != nil {
			return fmt.Errorf("loading stages for project %d: %w", id, err)
		}
		for i := range stages {
			if err := tx.Activities().DeleteByStage(ctx, stages[i].ID); err != nil {
				return fmt.Errorf("deleting activities of stage %d: %w", stages[i].ID, err)
			}
			if err := tx.Budgets().DeleteByStage(ctx, stages[i].ID); err != nil {
				return fmt.Errorf("deleting budget of stage %d: %w", stages[i].ID, err)
			}
			if err := tx.Stages().Delete(ctx, stages[i].ID); err != nil {
				return fmt.Errorf("deleting stage %d: %w", stages[i].ID, err)
			}
		}

		return tx.Projects().Delete(ctx, id)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete project",
			slog.String("operation", "Delete"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// Summary derives the read-only dashboard figures for a project. Overall
// progress is the truncated mean of stage progresses, computed on demand and
// never persisted.
func (s *ProjectService) Summary(ctx context.Context, id int64) (*ports.ProjectSummary, error) {
	var sum *ports.ProjectSummary
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.Projects().Get(ctx, id)
		if err != nil {
			return err
		}
		stages, err := tx.Stages().ListByProject(ctx, id)
		if err != nil {
			return fmt.Errorf("loading stages for project %d: %w", id, err)
		}
		spent, err := tx.Budgets().SumSpentByProject(ctx, id)
		if err != nil {
			return fmt.Errorf("summing spend for project %d: %w", id, err)
		}

		today := s.now()
		overall, completed, overdue := 0, 0, 0
		for i := range stages {
			overall += stages[i].Progress
			if stages[i].Status == stage.StatusCompleted {
				completed++
			}
			if stages[i].PlannedEnd.Before(today) && stages[i].Status != stage.StatusCompleted {
				overdue++
			}
		}
		if len(stages) > 0 {
			overall /= len(stages)
		}

		sum = &ports.ProjectSummary{
			ProjectID:       p.ID,
			Name:            p.Name,
			Status:          p.Status,
			PlannedEnd:      p.PlannedEnd,
			OverallProgress: overall,
			TotalStages:     len(stages),
			CompletedStages: completed,
			OverdueStages:   overdue,
			BudgetCeiling:   p.BudgetCeiling,
			TotalSpent:      spent,
			BudgetRemaining: p.BudgetCeiling.Sub(spent),
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to build project summary",
			slog.String("operation", "Summary"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return sum, nil
}
