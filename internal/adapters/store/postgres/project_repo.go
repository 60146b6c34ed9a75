package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/project"
)

type projectRepo struct {
	q pgx.Tx
}

const projectColumns = `id, client_id, name, description, methodology, kind, priority,
	start_date, planned_end, actual_end, budget_ceiling::text, status`

func scanProject(row pgx.Row) (*project.Project, error) {
	var p project.Project
	var ceiling string
	err := row.Scan(&p.ID, &p.ClientID, &p.Name, &p.Description, &p.Methodology,
		&p.Kind, &p.Priority, &p.StartDate, &p.PlannedEnd, &p.ActualEnd,
		&ceiling, &p.Status)
	if err != nil {
		return nil, err
	}
	p.BudgetCeiling, err = decimal.NewFromString(ceiling)
	if err != nil {
		return nil, fmt.Errorf("parsing budget_ceiling: %w", err)
	}
	return &p, nil
}

func (r *projectRepo) Get(ctx context.Context, id int64) (*project.Project, error) {
	row := r.q.QueryRow(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project %d: %w", id, err)
	}
	return p, nil
}

func (r *projectRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking project %d: %w", id, err)
	}
	return exists, nil
}

func (r *projectRepo) List(ctx context.Context) ([]project.Project, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var out []project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *projectRepo) Create(ctx context.Context, p *project.Project) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO projects (client_id, name, description, methodology, kind, priority,
			start_date, planned_end, actual_end, budget_ceiling, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		p.ClientID, p.Name, p.Description, p.Methodology, p.Kind, p.Priority,
		p.StartDate, p.PlannedEnd, p.ActualEnd, p.BudgetCeiling.String(), p.Status,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *projectRepo) Update(ctx context.Context, p *project.Project) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE projects
		SET client_id = $2, name = $3, description = $4, methodology = $5,
			kind = $6, priority = $7, start_date = $8, planned_end = $9,
			actual_end = $10, budget_ceiling = $11, status = $12
		WHERE id = $1`,
		p.ID, p.ClientID, p.Name, p.Description, p.Methodology, p.Kind,
		p.Priority, p.StartDate, p.PlannedEnd, p.ActualEnd,
		p.BudgetCeiling.String(), p.Status)
	if err != nil {
		return fmt.Errorf("updating project %d: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", p.ID, domain.ErrNotFound)
	}
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("project %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
