package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/activity"
)

type activityRepo struct {
	q pgx.Tx
}

const activityColumns = `id, stage_id, requirement_id, name, kind,
	planned_start, planned_end, actual_start, actual_end, progress, status`

func scanActivity(row pgx.Row) (*activity.Activity, error) {
	var a activity.Activity
	err := row.Scan(&a.ID, &a.StageID, &a.RequirementID, &a.Name, &a.Kind,
		&a.PlannedStart, &a.PlannedEnd, &a.ActualStart, &a.ActualEnd,
		&a.Progress, &a.Status)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *activityRepo) Get(ctx context.Context, id int64) (*activity.Activity, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
	a, err := scanActivity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("activity %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading activity %d: %w", id, err)
	}
	return a, nil
}

func (r *activityRepo) ListByStage(ctx context.Context, stageID int64) ([]activity.Activity, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE stage_id = $1 ORDER BY id`,
		stageID)
	if err != nil {
		return nil, fmt.Errorf("listing activities for stage %d: %w", stageID, err)
	}
	defer rows.Close()

	var out []activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning activity: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *activityRepo) CountByStage(ctx context.Context, stageID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM activities WHERE stage_id = $1`, stageID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting activities for stage %d: %w", stageID, err)
	}
	return n, nil
}

func (r *activityRepo) CountUnsettledByStage(ctx context.Context, stageID int64) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*) FROM activities
		WHERE stage_id = $1 AND status NOT IN ($2, $3)`,
		stageID, activity.StatusCompleted, activity.StatusCancelled).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting unsettled activities for stage %d: %w", stageID, err)
	}
	return n, nil
}

func (r *activityRepo) Create(ctx context.Context, a *activity.Activity) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO activities (stage_id, requirement_id, name, kind,
			planned_start, planned_end, actual_start, actual_end, progress, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		a.StageID, a.RequirementID, a.Name, a.Kind, a.PlannedStart,
		a.PlannedEnd, a.ActualStart, a.ActualEnd, a.Progress, a.Status,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("inserting activity: %w", err)
	}
	return nil
}

func (r *activityRepo) Update(ctx context.Context, a *activity.Activity) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE activities
		SET requirement_id = $2, name = $3, kind = $4, planned_start = $5,
			planned_end = $6, actual_start = $7, actual_end = $8,
			progress = $9, status = $10
		WHERE id = $1`,
		a.ID, a.RequirementID, a.Name, a.Kind, a.PlannedStart, a.PlannedEnd,
		a.ActualStart, a.ActualEnd, a.Progress, a.Status)
	if err != nil {
		return fmt.Errorf("updating activity %d: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *activityRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting activity %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *activityRepo) DeleteByStage(ctx context.Context, stageID int64) error {
	_, err := r.q.Exec(ctx, `DELETE FROM activities WHERE stage_id = $1`, stageID)
	if err != nil {
		return fmt.Errorf("deleting activities for stage %d: %w", stageID, err)
	}
	return nil
}
