package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

type stageRepo struct {
	q pgx.Tx
}

const stageColumns = `id, project_id, name, description, order_no,
	planned_start, planned_end, actual_start, actual_end, progress, status`

func scanStage(row pgx.Row) (*stage.Stage, error) {
	var s stage.Stage
	err := row.Scan(&s.ID, &s.ProjectID, &s.Name, &s.Description, &s.Order,
		&s.PlannedStart, &s.PlannedEnd, &s.ActualStart, &s.ActualEnd,
		&s.Progress, &s.Status)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stageRepo) Get(ctx context.Context, id int64) (*stage.Stage, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+stageColumns+` FROM stages WHERE id = $1`, id)
	s, err := scanStage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("stage %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading stage %d: %w", id, err)
	}
	return s, nil
}

func (r *stageRepo) ListByProject(ctx context.Context, projectID int64) ([]stage.Stage, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+stageColumns+` FROM stages WHERE project_id = $1 ORDER BY order_no`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("listing stages for project %d: %w", projectID, err)
	}
	defer rows.Close()

	var out []stage.Stage
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning stage: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *stageRepo) OrderTaken(ctx context.Context, projectID int64, order int) (bool, error) {
	var taken bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stages WHERE project_id = $1 AND order_no = $2)`,
		projectID, order).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("checking order slot: %w", err)
	}
	return taken, nil
}

// ShiftOrdersUp bumps every order at or above fromOrder by one. The
// per-project (project_id, order_no) uniqueness constraint is checked per
// row, so a single +1 update would collide with a not-yet-bumped neighbor
// regardless of any ORDER BY inside the statement. The shift therefore
// moves the range through negative numbers: orders are always positive, so
// neither pass can land on an occupied slot.
func (r *stageRepo) ShiftOrdersUp(ctx context.Context, projectID int64, fromOrder int) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stages SET order_no = -order_no
		WHERE project_id = $1 AND order_no >= $2`, projectID, fromOrder)
	if err != nil {
		return fmt.Errorf("shifting orders for project %d: %w", projectID, err)
	}

	// 1 - (-n) = n + 1.
	_, err = r.q.Exec(ctx, `
		UPDATE stages SET order_no = 1 - order_no
		WHERE project_id = $1 AND order_no < 0`, projectID)
	if err != nil {
		return fmt.Errorf("shifting orders for project %d: %w", projectID, err)
	}
	return nil
}

func (r *stageRepo) Create(ctx context.Context, s *stage.Stage) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stages (project_id, name, description, order_no,
			planned_start, planned_end, actual_start, actual_end, progress, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		s.ProjectID, s.Name, s.Description, s.Order, s.PlannedStart,
		s.PlannedEnd, s.ActualStart, s.ActualEnd, s.Progress, s.Status,
	).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("inserting stage: %w", err)
	}
	return nil
}

func (r *stageRepo) Update(ctx context.Context, s *stage.Stage) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stages
		SET name = $2, description = $3, order_no = $4, planned_start = $5,
			planned_end = $6, actual_start = $7, actual_end = $8,
			progress = $9, status = $10
		WHERE id = $1`,
		s.ID, s.Name, s.Description, s.Order, s.PlannedStart, s.PlannedEnd,
		s.ActualStart, s.ActualEnd, s.Progress, s.Status)
	if err != nil {
		return fmt.Errorf("updating stage %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stage %d: %w", s.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *stageRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting stage %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("stage %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
