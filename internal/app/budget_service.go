package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/ports"
)

// Compile-time check that BudgetService implements ports.BudgetService.
var _ ports.BudgetService = (*BudgetService)(nil)

// BudgetService implements ports.BudgetService: the allocate and
// record-spend sides of the budget ledger. Allocation on stage creation
// lives in StageService.Create; this service covers re-allocation and spend
// on existing budgets.
type BudgetService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewBudgetService creates a BudgetService on top of the given store.
func NewBudgetService(store ports.Store, logger *slog.Logger) *BudgetService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &BudgetService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Get returns a budget by ID.
func (s *BudgetService) Get(ctx context.Context, id int64) (*budget.Budget, error) {
	var b *budget.Budget
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		b, err = tx.Budgets().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetByStage returns the stage's budget.
func (s *BudgetService) GetByStage(ctx context.Context, stageID int64) (*budget.Budget, error) {
	var b *budget.Budget
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		b, err = tx.Budgets().GetByStage(ctx, stageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Update re-allocates the approved amount and/or records spend inside one
// transaction. The ceiling check reads the project-wide approved sum minus
// this budget's previous value; the overspend check compares against the
// approved amount as it stands after any re-allocation in the same call.
func (s *BudgetService) Update(ctx context.Context, id int64, upd ports.BudgetUpdate) (*budget.Budget, error) {
	s.logger.InfoContext(ctx, "updating budget", slog.Int64("id", id))

	var b *budget.Budget
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		b, err = tx.Budgets().Get(ctx, id)
		if err != nil {
			return err
		}

		if upd.Approved != nil {
			st, err := tx.Stages().Get(ctx, b.StageID)
			if err != nil {
				return err
			}
			p, err := tx.Projects().Get(ctx, st.ProjectID)
			if err != nil {
				return err
			}
			if err := checkCeiling(ctx, tx, p, b.Approved, *upd.Approved); err != nil {
				return err
			}
			b.Approved = *upd.Approved
			today := s.now()
			b.ApprovedAt = &today
		}

		if upd.Spent != nil {
			if upd.Spent.IsNegative() {
				return fmt.Errorf("%w: spent %s", domain.ErrInvalidAmount, upd.Spent)
			}
			if upd.Spent.GreaterThan(b.Approved) {
				return fmt.Errorf("%w: spent %s, approved %s",
					domain.ErrOverspendRejected, upd.Spent, b.Approved)
			}
			b.Spent = *upd.Spent
		}

		return tx.Budgets().Update(ctx, b)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update budget",
			slog.String("operation", "Update"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return b, nil
}
