package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/budget"
)

type budgetRepo struct {
	q pgx.Tx
}

const budgetColumns = `id, stage_id, approved::text, spent::text, currency, approved_at`

func scanBudget(row pgx.Row) (*budget.Budget, error) {
	var (
		b               budget.Budget
		approved, spent string
	)
	err := row.Scan(&b.ID, &b.StageID, &approved, &spent, &b.Currency, &b.ApprovedAt)
	if err != nil {
		return nil, err
	}
	if b.Approved, err = decimal.NewFromString(approved); err != nil {
		return nil, fmt.Errorf("parsing approved amount: %w", err)
	}
	if b.Spent, err = decimal.NewFromString(spent); err != nil {
		return nil, fmt.Errorf("parsing spent amount: %w", err)
	}
	return &b, nil
}

func (r *budgetRepo) Get(ctx context.Context, id int64) (*budget.Budget, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = $1`, id)
	b, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("budget %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading budget %d: %w", id, err)
	}
	return b, nil
}

func (r *budgetRepo) GetByStage(ctx context.Context, stageID int64) (*budget.Budget, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE stage_id = $1`, stageID)
	b, err := scanBudget(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("budget for stage %d: %w", stageID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading budget for stage %d: %w", stageID, err)
	}
	return b, nil
}

func (r *budgetRepo) sumByProject(ctx context.Context, column string, projectID int64) (decimal.Decimal, error) {
	var raw string
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(b.`+column+`), 0)::text
		FROM budgets b
		JOIN stages s ON s.id = b.stage_id
		WHERE s.project_id = $1`, projectID).Scan(&raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("summing %s for project %d: %w", column, projectID, err)
	}
	sum, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s sum: %w", column, err)
	}
	return sum, nil
}

func (r *budgetRepo) SumApprovedByProject(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return r.sumByProject(ctx, "approved", projectID)
}

func (r *budgetRepo) SumSpentByProject(ctx context.Context, projectID int64) (decimal.Decimal, error) {
	return r.sumByProject(ctx, "spent", projectID)
}

func (r *budgetRepo) Create(ctx context.Context, b *budget.Budget) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO budgets (stage_id, approved, spent, currency, approved_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		b.StageID, b.Approved.String(), b.Spent.String(), b.Currency, b.ApprovedAt,
	).Scan(&b.ID)
	if err != nil {
		return fmt.Errorf("inserting budget: %w", err)
	}
	return nil
}

func (r *budgetRepo) Update(ctx context.Context, b *budget.Budget) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE budgets
		SET approved = $2, spent = $3, currency = $4, approved_at = $5
		WHERE id = $1`,
		b.ID, b.Approved.String(), b.Spent.String(), b.Currency, b.ApprovedAt)
	if err != nil {
		return fmt.Errorf("updating budget %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("budget %d: %w", b.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *budgetRepo) DeleteByStage(ctx context.Context, stageID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM budgets WHERE stage_id = $1`, stageID)
	if err != nil {
		return fmt.Errorf("deleting budget for stage %d: %w", stageID, err)
	}
	return nil
}
