package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

const (
	msgRequired     = "is required"
	msgMustNotEmpty = "must not be empty"
)

// DateLayout is the wire format for calendar dates. Times of day are never
// exposed through the API; the engine works in whole days.
const DateLayout = "2006-01-02"

// ParseDate parses a wire-format date. The zero time and an error are
// returned for anything that does not match DateLayout.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// checkDate validates an optional date field, recording a per-field error
// when the value is present but unparseable.
func checkDate(fields map[string]string, name, value string) {
	if value == "" {
		return
	}
	if _, err := ParseDate(value); err != nil {
		fields[name] = fmt.Sprintf("must be a date in %s format", DateLayout)
	}
}

// checkAmount validates an optional decimal field, recording a per-field
// error when the value is present but not a valid decimal number.
func checkAmount(fields map[string]string, name, value string) {
	if value == "" {
		return
	}
	if _, err := decimal.NewFromString(value); err != nil {
		fields[name] = "must be a decimal number"
	}
}

// CreateProjectRequest represents the JSON body for creating a new project.
type CreateProjectRequest struct {
	ClientID      int64   `json:"client_id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Methodology   string  `json:"methodology,omitempty"`
	Kind          string  `json:"kind,omitempty"`
	Priority      string  `json:"priority,omitempty"`
	StartDate     string  `json:"start_date"`
	PlannedEnd    *string `json:"planned_end,omitempty"`
	BudgetCeiling string  `json:"budget_ceiling"`
}

// Validate checks that required fields are present and parseable.
// Returns a *domain.ValidationError if any checks fail.
func (r *CreateProjectRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	if r.ClientID <= 0 {
		fields["client_id"] = fmt.Sprintf("must be positive, got %d", r.ClientID)
	}
	if r.StartDate == "" {
		fields["start_date"] = msgRequired
	} else {
		checkDate(fields, "start_date", r.StartDate)
	}
	if r.PlannedEnd != nil {
		checkDate(fields, "planned_end", *r.PlannedEnd)
	}
	if r.BudgetCeiling == "" {
		fields["budget_ceiling"] = msgRequired
	} else {
		checkAmount(fields, "budget_ceiling", r.BudgetCeiling)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateProjectRequest represents the JSON body for updating project
// metadata. All fields are optional; nil means "do not change this field".
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Methodology *string `json:"methodology,omitempty"`
	Kind        *string `json:"kind,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	PlannedEnd  *string `json:"planned_end,omitempty"`
}

// Validate checks that any provided fields have valid values.
func (r *UpdateProjectRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}
	if r.PlannedEnd != nil {
		checkDate(fields, "planned_end", *r.PlannedEnd)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// CreateStageRequest represents the JSON body for creating a new stage with
// its initial budget allocation.
type CreateStageRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Order         int    `json:"order"`
	PlannedStart  string `json:"planned_start"`
	PlannedEnd    string `json:"planned_end"`
	InitialBudget string `json:"initial_budget"`
}

// Validate checks that required fields are present and parseable.
func (r *CreateStageRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	if r.Order < 1 {
		fields["order"] = fmt.Sprintf("must be at least 1, got %d", r.Order)
	}
	if r.PlannedStart == "" {
		fields["planned_start"] = msgRequired
	} else {
		checkDate(fields, "planned_start", r.PlannedStart)
	}
	if r.PlannedEnd == "" {
		fields["planned_end"] = msgRequired
	} else {
		checkDate(fields, "planned_end", r.PlannedEnd)
	}
	if r.InitialBudget == "" {
		fields["initial_budget"] = msgRequired
	} else {
		checkAmount(fields, "initial_budget", r.InitialBudget)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateStageRequest represents the JSON body for updating stage metadata.
// Lifecycle changes go through the transition endpoint instead.
type UpdateStageRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks that any provided fields have valid values.
func (r *UpdateStageRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// TransitionStageRequest represents the JSON body for an explicit stage
// lifecycle transition.
type TransitionStageRequest struct {
	Status string `json:"status"`
}

// Validate checks that the target status names a known stage state.
func (r *TransitionStageRequest) Validate() error {
	fields := make(map[string]string)

	if r.Status == "" {
		fields["status"] = msgRequired
	} else if !stage.Status(r.Status).IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", r.Status)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// MoveStageRequest represents the JSON body for relocating a stage within
// its project's ordering.
type MoveStageRequest struct {
	Order int `json:"order"`
}

// Validate checks that the target order is positive.
func (r *MoveStageRequest) Validate() error {
	if r.Order < 1 {
		return &domain.ValidationError{
			Fields: map[string]string{"order": fmt.Sprintf("must be at least 1, got %d", r.Order)},
		}
	}
	return nil
}

// CreateActivityRequest represents the JSON body for creating a new activity.
type CreateActivityRequest struct {
	Name          string  `json:"name"`
	Kind          string  `json:"kind,omitempty"`
	RequirementID *int64  `json:"requirement_id,omitempty"`
	PlannedStart  *string `json:"planned_start,omitempty"`
	PlannedEnd    *string `json:"planned_end,omitempty"`
}

// Validate checks that required fields are present and parseable.
func (r *CreateActivityRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = msgRequired
	}
	if r.RequirementID != nil && *r.RequirementID <= 0 {
		fields["requirement_id"] = fmt.Sprintf("must be positive, got %d", *r.RequirementID)
	}
	if r.PlannedStart != nil {
		checkDate(fields, "planned_start", *r.PlannedStart)
	}
	if r.PlannedEnd != nil {
		checkDate(fields, "planned_end", *r.PlannedEnd)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateActivityRequest represents the JSON body for updating activity
// metadata. Progress changes go through the progress endpoint instead.
type UpdateActivityRequest struct {
	Name         *string `json:"name,omitempty"`
	Kind         *string `json:"kind,omitempty"`
	PlannedStart *string `json:"planned_start,omitempty"`
	PlannedEnd   *string `json:"planned_end,omitempty"`
}

// Validate checks that any provided fields have valid values.
func (r *UpdateActivityRequest) Validate() error {
	fields := make(map[string]string)

	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		fields["name"] = msgMustNotEmpty
	}
	if r.PlannedStart != nil {
		checkDate(fields, "planned_start", *r.PlannedStart)
	}
	if r.PlannedEnd != nil {
		checkDate(fields, "planned_end", *r.PlannedEnd)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// SetProgressRequest represents the JSON body for setting an activity's
// completion percentage.
type SetProgressRequest struct {
	Progress *int `json:"progress"`
}

// Validate checks that progress is present and within 0-100.
func (r *SetProgressRequest) Validate() error {
	fields := make(map[string]string)

	if r.Progress == nil {
		fields["progress"] = msgRequired
	} else if *r.Progress < 0 || *r.Progress > 100 {
		fields["progress"] = fmt.Sprintf("must be 0-100, got %d", *r.Progress)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// BulkProgressRequest represents the JSON body for a bulk progress update.
type BulkProgressRequest struct {
	Updates []BulkProgressItem `json:"updates"`
}

// BulkProgressItem is a single entry within a BulkProgressRequest.
type BulkProgressItem struct {
	ActivityID int64 `json:"activity_id"`
	Progress   int   `json:"progress"`
}

// Validate checks that the update list is non-empty and every entry is
// well-formed. Item-level business failures surface per-item in the
// response, not here.
func (r *BulkProgressRequest) Validate() error {
	fields := make(map[string]string)

	if len(r.Updates) == 0 {
		fields["updates"] = msgMustNotEmpty
	}
	for i, u := range r.Updates {
		if u.ActivityID <= 0 {
			fields[fmt.Sprintf("updates[%d].activity_id", i)] = fmt.Sprintf("must be positive, got %d", u.ActivityID)
		}
		if u.Progress < 0 || u.Progress > 100 {
			fields[fmt.Sprintf("updates[%d].progress", i)] = fmt.Sprintf("must be 0-100, got %d", u.Progress)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateBudgetRequest represents the JSON body for re-allocating a budget
// or recording executed spend. All fields are optional; nil means "do not
// change this field".
type UpdateBudgetRequest struct {
	Approved *string `json:"approved,omitempty"`
	Spent    *string `json:"spent,omitempty"`
}

// Validate checks that any provided amounts are parseable decimals. Sign
// and ceiling rules belong to the budget service.
func (r *UpdateBudgetRequest) Validate() error {
	fields := make(map[string]string)

	if r.Approved == nil && r.Spent == nil {
		fields["body"] = "at least one of approved, spent is required"
	}
	if r.Approved != nil {
		if *r.Approved == "" {
			fields["approved"] = msgMustNotEmpty
		} else {
			checkAmount(fields, "approved", *r.Approved)
		}
	}
	if r.Spent != nil {
		if *r.Spent == "" {
			fields["spent"] = msgMustNotEmpty
		} else {
			checkAmount(fields, "spent", *r.Spent)
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
