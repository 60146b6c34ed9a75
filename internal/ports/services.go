package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

// ProjectService defines the service port for project aggregate operations.
// Implemented by the application layer; called by inbound adapters (handlers).
type ProjectService interface {
	// Create validates and creates a new project.
	// Returns domain.ErrValidation if the project fails validation.
	Create(ctx context.Context, p *project.Project) (*project.Project, error)

	// List returns all projects without populating their stages.
	List(ctx context.Context) ([]project.Project, error)

	// Get returns a single project by ID.
	// Returns domain.ErrNotFound if the project does not exist.
	Get(ctx context.Context, id int64) (*project.Project, error)

	// Update applies the non-nil fields of upd to the project's metadata.
	// Returns domain.ErrNotFound if the project does not exist.
	Update(ctx context.Context, id int64, upd ProjectUpdate) (*project.Project, error)

	// Delete removes the project and, in order, every activity, budget, and
	// stage it owns. Returns domain.ErrNotFound if the project does not
	// exist.
	Delete(ctx context.Context, id int64) error

	// Summary returns read-only reporting figures for the project. It never
	// mutates state. Returns domain.ErrNotFound if the project does not
	// exist.
	Summary(ctx context.Context, id int64) (*ProjectSummary, error)
}

// StageService defines the service port for stage lifecycle, ordering, and
// budget-backed creation.
type StageService interface {
	// Create inserts a stage at its requested order, shifting existing
	// stages up when the slot is taken, and atomically allocates its
	// initial budget against the project ceiling.
	// Returns domain.ErrNotFound if the project does not exist,
	// domain.ErrProjectNotActive for cancelled/closed projects, and
	// domain.ErrBudgetExceeded when the allocation breaks the ceiling.
	Create(ctx context.Context, projectID int64, s *stage.Stage, initialBudget decimal.Decimal) (*stage.Stage, *budget.Budget, error)

	// ListByProject returns the project's stages in order.
	// Returns domain.ErrNotFound if the project does not exist.
	ListByProject(ctx context.Context, projectID int64) ([]stage.Stage, error)

	// Get returns a single stage by ID.
	// Returns domain.ErrNotFound if the stage does not exist.
	Get(ctx context.Context, id int64) (*stage.Stage, error)

	// Update applies the non-nil fields of upd to the stage's metadata.
	// Lifecycle changes go through Transition, not Update.
	Update(ctx context.Context, id int64, upd StageUpdate) (*stage.Stage, error)

	// Transition applies an explicit lifecycle transition, enforcing the
	// state machine's entry preconditions, and recomputes the project.
	// Returns domain.ErrInvalidTransition, domain.ErrProjectNotActive,
	// domain.ErrTooEarly, domain.ErrNoActivities,
	// domain.ErrIncompleteProgress, or domain.ErrPendingActivities.
	Transition(ctx context.Context, id int64, target stage.Status) (*stage.Stage, error)

	// Move relocates the stage to newOrder and renumbers the project's
	// stages 1..N with no gaps or duplicates. Moving to the current order
	// is a no-op.
	Move(ctx context.Context, id int64, newOrder int) error

	// Delete removes a stage and its budget, then recomputes the project.
	// Returns domain.ErrDeletionBlocked when the stage owns activities or
	// its budget has executed spend. The order gap left behind is not
	// compacted.
	Delete(ctx context.Context, id int64) error
}

// ActivityService defines the service port for activity CRUD and progress
// tracking. Every mutation synchronously cascades the stage and project
// recompute before returning.
type ActivityService interface {
	// Create adds an activity to a stage. Creating the first activity of a
	// planned stage implicitly requests the stage start and is subject to
	// the same preconditions as an explicit transition; when they fail, the
	// creation fails with the same error. Terminal stages reject new
	// activities with domain.ErrInvalidTransition.
	Create(ctx context.Context, stageID int64, a *activity.Activity) (*activity.Activity, error)

	// ListByStage returns the stage's activities.
	// Returns domain.ErrNotFound if the stage does not exist.
	ListByStage(ctx context.Context, stageID int64) ([]activity.Activity, error)

	// Get returns a single activity by ID.
	// Returns domain.ErrNotFound if the activity does not exist.
	Get(ctx context.Context, id int64) (*activity.Activity, error)

	// Update applies the non-nil fields of upd to the activity's metadata.
	Update(ctx context.Context, id int64, upd ActivityUpdate) (*activity.Activity, error)

	// Delete removes the activity and recomputes its stage.
	Delete(ctx context.Context, id int64) error

	// SetProgress updates the completion percentage, derives the activity
	// state, and cascades the stage and project recompute in the same
	// transaction.
	SetProgress(ctx context.Context, id int64, progress int) (*activity.Activity, error)

	// BulkSetProgress applies many progress updates with partial-success
	// semantics: each update runs as its own transaction and fails or
	// succeeds independently. Per-item failures are collected in
	// BulkProgressResult.Errors.
	BulkSetProgress(ctx context.Context, updates []ProgressUpdate) (*BulkProgressResult, error)
}

// BudgetService defines the service port for the budget ledger.
type BudgetService interface {
	// Get returns a budget by ID.
	// Returns domain.ErrNotFound if the budget does not exist.
	Get(ctx context.Context, id int64) (*budget.Budget, error)

	// GetByStage returns the stage's budget.
	// Returns domain.ErrNotFound if the stage has no budget.
	GetByStage(ctx context.Context, stageID int64) (*budget.Budget, error)

	// Update re-allocates the approved amount and/or records spend. The
	// ceiling check excludes the budget's previous approved value from the
	// running total and runs in the same transaction as the write.
	// Returns domain.ErrInvalidAmount for negative amounts,
	// domain.ErrBudgetExceeded when the ceiling breaks, and
	// domain.ErrOverspendRejected when spend exceeds the approved amount.
	Update(ctx context.Context, id int64, upd BudgetUpdate) (*budget.Budget, error)
}

// ProjectUpdate carries optional metadata changes; nil fields are left as-is.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Methodology *string
	Kind        *string
	Priority    *string
	PlannedEnd  *time.Time
}

// StageUpdate carries optional metadata changes; nil fields are left as-is.
type StageUpdate struct {
	Name        *string
	Description *string
}

// ActivityUpdate carries optional metadata changes; nil fields are left as-is.
type ActivityUpdate struct {
	Name         *string
	Kind         *string
	PlannedStart *time.Time
	PlannedEnd   *time.Time
}

// BudgetUpdate carries optional ledger changes; nil fields are left as-is.
type BudgetUpdate struct {
	Approved *decimal.Decimal
	Spent    *decimal.Decimal
}

// ProgressUpdate pairs an activity ID with its new progress value for bulk
// operations.
type ProgressUpdate struct {
	ActivityID int64
	Progress   int
}

// BulkProgressError records a single failed update within a bulk operation.
type BulkProgressError struct {
	ActivityID int64
	Err        error
}

// BulkProgressResult holds the outcomes of a bulk progress update. Updated
// contains successfully updated activities; Errors contains per-item
// failures.
type BulkProgressResult struct {
	Updated []activity.Activity
	Errors  []BulkProgressError
}

// ProjectSummary is the read-only dashboard view of a project. All figures
// are derived at read time; none are persisted.
type ProjectSummary struct {
	ProjectID       int64
	Name            string
	Status          project.Status
	PlannedEnd      *time.Time
	OverallProgress int
	TotalStages     int
	CompletedStages int
	OverdueStages   int
	BudgetCeiling   decimal.Decimal
	TotalSpent      decimal.Decimal
	BudgetRemaining decimal.Decimal
}
