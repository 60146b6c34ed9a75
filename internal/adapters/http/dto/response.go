// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// formatDate renders an optional date. Nil stays nil so the JSON output
// distinguishes "never happened" from any zero value.
func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(DateLayout)
	return &s
}

// ProjectResponse represents a single project in HTTP responses.
type ProjectResponse struct {
	ID            int64   `json:"id"`
	ClientID      int64   `json:"client_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Methodology   string  `json:"methodology,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Priority      string  `json:"priority,omitempty"`
	StartDate     string  `json:"start_date"`
	PlannedEnd    *string `json:"planned_end"`
	ActualEnd     *string `json:"actual_end"`
	BudgetCeiling string  `json:"budget_ceiling"`
	Status        string  `json:"status"`
}

// ProjectListResponse represents a list of projects in HTTP responses.
type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Count    int               `json:"count"`
}

// ToProjectResponse converts a domain Project entity to an HTTP response DTO.
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:            p.ID,
		ClientID:      p.ClientID,
		Name:          p.Name,
		Description:   p.Description,
		Methodology:   p.Methodology,
		Kind:          p.Kind,
		Priority:      p.Priority,
		StartDate:     p.StartDate.Format(DateLayout),
		PlannedEnd:    formatDate(p.PlannedEnd),
		ActualEnd:     formatDate(p.ActualEnd),
		BudgetCeiling: p.BudgetCeiling.String(),
		Status:        p.Status.String(),
	}
}

// ToProjectListResponse converts a slice of domain Project entities to an
// HTTP list response DTO.
func ToProjectListResponse(projects []project.Project) ProjectListResponse {
	items := make([]ProjectResponse, len(projects))
	for i := range projects {
		items[i] = ToProjectResponse(&projects[i])
	}
	return ProjectListResponse{
		Projects: items,
		Count:    len(items),
	}
}

// StageResponse represents a single stage in HTTP responses.
type StageResponse struct {
	ID           int64   `json:"id"`
	ProjectID    int64   `json:"project_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Order        int     `json:"order"`
	PlannedStart string  `json:"planned_start"`
	PlannedEnd   string  `json:"planned_end"`
	ActualStart  *string `json:"actual_start"`
	ActualEnd    *string `json:"actual_end"`
	Progress     int     `json:"progress"`
	Status       string  `json:"status"`
}

// StageListResponse represents a project's ordered stage list.
type StageListResponse struct {
	Stages []StageResponse `json:"stages"`
	Count  int             `json:"count"`
}

// ToStageResponse converts a domain Stage entity to an HTTP response DTO.
func ToStageResponse(s *stage.Stage) StageResponse {
	return StageResponse{
		ID:           s.ID,
		ProjectID:    s.ProjectID,
		Name:         s.Name,
		Description:  s.Description,
		Order:        s.Order,
		PlannedStart: s.PlannedStart.Format(DateLayout),
		PlannedEnd:   s.PlannedEnd.Format(DateLayout),
		ActualStart:  formatDate(s.ActualStart),
		ActualEnd:    formatDate(s.ActualEnd),
		Progress:     s.Progress,
		Status:       s.Status.String(),
	}
}

// ToStageListResponse converts a slice of domain Stage entities to an HTTP
// list response DTO.
func ToStageListResponse(stages []stage.Stage) StageListResponse {
	items := make([]StageResponse, len(stages))
	for i := range stages {
		items[i] = ToStageResponse(&stages[i])
	}
	return StageListResponse{
		Stages: items,
		Count:  len(items),
	}
}

// StageWithBudgetResponse is returned by stage creation, which allocates the
// stage and its initial budget atomically.
type StageWithBudgetResponse struct {
	Stage  StageResponse  `json:"stage"`
	Budget BudgetResponse `json:"budget"`
}

// ActivityResponse represents a single activity in HTTP responses.
type ActivityResponse struct {
	ID            int64   `json:"id"`
	StageID       int64   `json:"stage_id"`
	RequirementID *int64  `json:"requirement_id,omitempty"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind,omitempty"`
	PlannedStart  *string `json:"planned_start"`
	PlannedEnd    *string `json:"planned_end"`
	ActualStart   *string `json:"actual_start"`
	ActualEnd     *string `json:"actual_end"`
	Progress      int     `json:"progress"`
	Status        string  `json:"status"`
}

// ActivityListResponse represents a stage's activity list.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Count      int                `json:"count"`
}

// ToActivityResponse converts a domain Activity entity to an HTTP response DTO.
func ToActivityResponse(a *activity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:            a.ID,
		StageID:       a.StageID,
		RequirementID: a.RequirementID,
		Name:          a.Name,
		Kind:          a.Kind,
		PlannedStart:  formatDate(a.PlannedStart),
		PlannedEnd:    formatDate(a.PlannedEnd),
		ActualStart:   formatDate(a.ActualStart),
		ActualEnd:     formatDate(a.ActualEnd),
		Progress:      a.Progress,
		Status:        a.Status.String(),
	}
}

// ToActivityListResponse converts a slice of domain Activity entities to an
// HTTP list response DTO.
func ToActivityListResponse(activities []activity.Activity) ActivityListResponse {
	items := make([]ActivityResponse, len(activities))
	for i := range activities {
		items[i] = ToActivityResponse(&activities[i])
	}
	return ActivityListResponse{
		Activities: items,
		Count:      len(items),
	}
}

// BudgetResponse represents a stage budget in HTTP responses. Amounts are
// strings to keep decimal precision out of float territory.
type BudgetResponse struct {
	ID         int64   `json:"id"`
	StageID    int64   `json:"stage_id"`
	Approved   string  `json:"approved"`
	Spent      string  `json:"spent"`
	Currency   string  `json:"currency"`
	ApprovedAt *string `json:"approved_at"`
}

// ToBudgetResponse converts a domain Budget entity to an HTTP response DTO.
func ToBudgetResponse(b *budget.Budget) BudgetResponse {
	return BudgetResponse{
		ID:         b.ID,
		StageID:    b.StageID,
		Approved:   b.Approved.String(),
		Spent:      b.Spent.String(),
		Currency:   b.Currency,
		ApprovedAt: formatDate(b.ApprovedAt),
	}
}

// BulkProgressResponse represents the result of a bulk progress update.
// It includes both successful updates and per-item errors.
type BulkProgressResponse struct {
	Updated   []ActivityResponse      `json:"updated"`
	Errors    []BulkProgressErrorItem `json:"errors"`
	Total     int                     `json:"total"`
	Succeeded int                     `json:"succeeded"`
	Failed    int                     `json:"failed"`
}

// BulkProgressErrorItem represents a single failed update within a bulk
// operation.
type BulkProgressErrorItem struct {
	ActivityID int64  `json:"activity_id"`
	Message    string `json:"message"`
}

// ToBulkProgressResponse converts a ports.BulkProgressResult to an HTTP
// response DTO.
func ToBulkProgressResponse(result *ports.BulkProgressResult) BulkProgressResponse {
	updated := make([]ActivityResponse, len(result.Updated))
	for i := range result.Updated {
		updated[i] = ToActivityResponse(&result.Updated[i])
	}

	errs := make([]BulkProgressErrorItem, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = BulkProgressErrorItem{
			ActivityID: e.ActivityID,
			Message:    e.Err.Error(),
		}
	}

	total := len(result.Updated) + len(result.Errors)
	return BulkProgressResponse{
		Updated:   updated,
		Errors:    errs,
		Total:     total,
		Succeeded: len(result.Updated),
		Failed:    len(result.Errors),
	}
}

// ProjectSummaryResponse is the read-only dashboard view of a project.
type ProjectSummaryResponse struct {
	ProjectID       int64   `json:"project_id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	PlannedEnd      *string `json:"planned_end"`
	OverallProgress int     `json:"overall_progress"`
	TotalStages     int     `json:"total_stages"`
	CompletedStages int     `json:"completed_stages"`
	OverdueStages   int     `json:"overdue_stages"`
	BudgetCeiling   string  `json:"budget_ceiling"`
	TotalSpent      string  `json:"total_spent"`
	BudgetRemaining string  `json:"budget_remaining"`
}

// ToProjectSummaryResponse converts a ports.ProjectSummary to an HTTP
// response DTO.
func ToProjectSummaryResponse(s *ports.ProjectSummary) ProjectSummaryResponse {
	return ProjectSummaryResponse{
		ProjectID:       s.ProjectID,
		Name:            s.Name,
		Status:          s.Status.String(),
		PlannedEnd:      formatDate(s.PlannedEnd),
		OverallProgress: s.OverallProgress,
		TotalStages:     s.TotalStages,
		CompletedStages: s.CompletedStages,
		OverdueStages:   s.OverdueStages,
		BudgetCeiling:   s.BudgetCeiling.String(),
		TotalSpent:      s.TotalSpent.String(),
		BudgetRemaining: s.BudgetRemaining.String(),
	}
}
