package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// tempOrderBase is the disjoint order range used while renumbering a
// project's stages. Writing every affected stage here first means no
// intermediate state ever holds a duplicate order, which is the contract the
// per-project uniqueness constraint demands.
const tempOrderBase = 1_000_000

// Compile-time check that StageService implements ports.StageService.
var _ ports.StageService = (*StageService)(nil)

// StageService implements ports.StageService: stage lifecycle transitions,
// ordering, and budget-backed creation.
type StageService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewStageService creates a StageService on top of the given store.
func NewStageService(store ports.Store, logger *slog.Logger) *StageService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &StageService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create inserts a stage at its requested order and allocates its initial
// budget, all in one transaction: the order shift, the stage write, the
// ceiling check, the budget write, and the project recompute either all
// commit or none do.
func (s *StageService) Create(ctx context.Context, projectID int64, st *stage.Stage, initialBudget decimal.Decimal) (*stage.Stage, *budget.Budget, error) {
	s.logger.InfoContext(ctx, "creating stage",
		slog.Int64("project_id", projectID),
		slog.String("name", st.Name),
	)

	st.ProjectID = projectID
	if st.Status == "" {
		st.Status = stage.StatusPlanned
	}
	if err := st.Validate(); err != nil {
		return nil, nil, err
	}

	var b *budget.Budget
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.Projects().Get(ctx, projectID)
		if err != nil {
			return err
		}
		if !p.AcceptsNewStages() {
			return fmt.Errorf("%w: project %d is %s", domain.ErrProjectNotActive, p.ID, p.Status)
		}

		taken, err := tx.Stages().OrderTaken(ctx, projectID, st.Order)
		if err != nil {
			return fmt.Errorf("checking order slot: %w", err)
		}
		if taken {
			if err := tx.Stages().ShiftOrdersUp(ctx, projectID, st.Order); err != nil {
				return fmt.Errorf("shifting orders: %w", err)
			}
		}

		if err := tx.Stages().Create(ctx, st); err != nil {
			return fmt.Errorf("persisting stage: %w", err)
		}

		if err := checkCeiling(ctx, tx, p, decimal.Zero, initialBudget); err != nil {
			return err
		}

		today := s.now()
		b = &budget.Budget{
			StageID:    st.ID,
			Approved:   initialBudget,
			Spent:      decimal.Zero,
			Currency:   budget.DefaultCurrency,
			ApprovedAt: &today,
		}
		if err := tx.Budgets().Create(ctx, b); err != nil {
			return fmt.Errorf("persisting budget: %w", err)
		}

		return recomputeProject(ctx, tx, projectID, today)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create stage",
			slog.String("operation", "Create"),
			slog.Int64("project_id", projectID),
			slog.Any("error", err),
		)
		return nil, nil, err
	}

	return st, b, nil
}

// ListByProject returns the project's stages ordered by their order number.
func (s *StageService) ListByProject(ctx context.Context, projectID int64) ([]stage.Stage, error) {
	var stages []stage.Stage
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		exists, err := tx.Projects().Exists(ctx, projectID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("project %d: %w", projectID, domain.ErrNotFound)
		}
		stages, err = tx.Stages().ListByProject(ctx, projectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stages, nil
}

// Get returns a single stage by ID.
func (s *StageService) Get(ctx context.Context, id int64) (*stage.Stage, error) {
	var st *stage.Stage
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		st, err = tx.Stages().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// Update applies metadata changes only; lifecycle changes go through
// Transition.
func (s *StageService) Update(ctx context.Context, id int64, upd ports.StageUpdate) (*stage.Stage, error) {
	s.logger.InfoContext(ctx, "updating stage", slog.Int64("id", id))

	var st *stage.Stage
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		st, err = tx.Stages().Get(ctx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			st.Name = *upd.Name
		}
		if upd.Description != nil {
			st.Description = *upd.Description
		}

		if err := st.Validate(); err != nil {
			return err
		}
		return tx.Stages().Update(ctx, st)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update stage",
			slog.String("operation", "Update"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return st, nil
}

// Transition applies an explicit lifecycle transition with the state
// machine's entry preconditions and cascades the project recompute.
func (s *StageService) Transition(ctx context.Context, id int64, target stage.Status) (*stage.Stage, error) {
	s.logger.InfoContext(ctx, "transitioning stage",
		slog.Int64("id", id),
		slog.String("target", target.String()),
	)

	if !target.IsValid() {
		return nil, &domain.ValidationError{
			Fields: map[string]string{"status": fmt.Sprintf("invalid: %q", target)},
		}
	}

	var st *stage.Stage
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		st, err = tx.Stages().Get(ctx, id)
		if err != nil {
			return err
		}

		if !st.Status.CanTransitionTo(target) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, st.Status, target)
		}

		today := s.now()

		switch target {
		case stage.StatusInProgress:
			p, err := tx.Projects().Get(ctx, st.ProjectID)
			if err != nil {
				return err
			}
			if err := checkStartable(p, st, today); err != nil {
				return err
			}
			count, err := tx.Activities().CountByStage(ctx, st.ID)
			if err != nil {
				return fmt.Errorf("counting activities for stage %d: %w", st.ID, err)
			}
			if count == 0 {
				return fmt.Errorf("%w: stage %d", domain.ErrNoActivities, st.ID)
			}
			if st.ActualStart == nil {
				start := today
				st.ActualStart = &start
			}

		case stage.StatusCompleted:
			if st.Progress < 100 {
				return fmt.Errorf("%w: progress %d", domain.ErrIncompleteProgress, st.Progress)
			}
			unsettled, err := tx.Activities().CountUnsettledByStage(ctx, st.ID)
			if err != nil {
				return fmt.Errorf("counting unsettled activities for stage %d: %w", st.ID, err)
			}
			if unsettled > 0 {
				return fmt.Errorf("%w: %d open", domain.ErrPendingActivities, unsettled)
			}
			end := today
			st.ActualEnd = &end
		}

		st.Status = target
		if err := tx.Stages().Update(ctx, st); err != nil {
			return fmt.Errorf("persisting stage %d: %w", st.ID, err)
		}
		return recomputeProject(ctx, tx, st.ProjectID, today)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to transition stage",
			slog.String("operation", "Transition"),
			slog.Int64("id", id),
			slog.String("target", target.String()),
			slog.Any("error", err),
		)
		return nil, err
	}

	return st, nil
}

// Move relocates the stage to newOrder and renumbers the whole project
// 1..N. The renumbering writes every stage to a disjoint temporary range
// first and final values in a second pass, so no intermediate state visible
// to another transaction can violate order uniqueness.
func (s *StageService) Move(ctx context.Context, id int64, newOrder int) error {
	s.logger.InfoContext(ctx, "moving stage",
		slog.Int64("id", id),
		slog.Int("new_order", newOrder),
	)

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		st, err := tx.Stages().Get(ctx, id)
		if err != nil {
			return err
		}
		if st.Order == newOrder {
			return nil
		}

		stages, err := tx.Stages().ListByProject(ctx, st.ProjectID)
		if err != nil {
			return fmt.Errorf("loading stages for project %d: %w", st.ProjectID, err)
		}

		stages = stage.Resequence(stages, id, newOrder)

		for i := range stages {
			tmp := stages[i]
			tmp.Order = tempOrderBase + i
			if err := tx.Stages().Update(ctx, &tmp); err != nil {
				return fmt.Errorf("staging order for stage %d: %w", tmp.ID, err)
			}
		}
		for i := range stages {
			if err := tx.Stages().Update(ctx, &stages[i]); err != nil {
				return fmt.Errorf("finalizing order for stage %d: %w", stages[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to move stage",
			slog.String("operation", "Move"),
			slog.Int64("id", id),
			slog.Int("new_order", newOrder),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// Delete removes a stage and its budget after the deletion guards pass,
// then recomputes the project. The order gap left behind is not compacted.
func (s *StageService) Delete(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting stage", slog.Int64("id", id))

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		st, err := tx.Stages().Get(ctx, id)
		if err != nil {
			return err
		}

		count, err := tx.Activities().CountByStage(ctx, id)
		if err != nil {
			return fmt.Errorf("counting activities for stage %d: %w", id, err)
		}
		if count > 0 {
			return fmt.Errorf("%w: stage %d has %d activities", domain.ErrDeletionBlocked, id, count)
		}

		b, err := tx.Budgets().GetByStage(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("loading budget for stage %d: %w", id, err)
		}
		if b != nil && b.Spent.IsPositive() {
			return fmt.Errorf("%w: stage %d has executed spend %s", domain.ErrDeletionBlocked, id, b.Spent)
		}

		if err := tx.Budgets().DeleteByStage(ctx, id); err != nil {
			return fmt.Errorf("deleting budget of stage %d: %w", id, err)
		}
		if err := tx.Stages().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting stage %d: %w", id, err)
		}
		return recomputeProject(ctx, tx, st.ProjectID, s.now())
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete stage",
			slog.String("operation", "Delete"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}
