package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
)

// Store is the transactional record store the consistency engine runs on.
// Every mutating service operation executes inside exactly one WithinTx call
// spanning the full upward cascade (activity -> stage -> project) or the
// full reorder sequence.
type Store interface {
	// WithinTx runs fn inside a single transaction. If fn returns an error
	// the transaction rolls back and the error is returned unchanged.
	// Implementations must serialize transactions that touch the same
	// project's stage set or budget sum; when that cannot be satisfied they
	// return domain.ErrConcurrentModification. The core never retries.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the per-entity repositories of one open transaction.
// A Tx must not be used after WithinTx returns.
type Tx interface {
	Projects() ProjectRepo
	Stages() StageRepo
	Activities() ActivityRepo
	Budgets() BudgetRepo
}

// ProjectRepo persists projects.
// Lookups return domain.ErrNotFound for unresolved IDs.
type ProjectRepo interface {
	Get(ctx context.Context, id int64) (*project.Project, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]project.Project, error)
	// Create assigns the ID on the given entity.
	Create(ctx context.Context, p *project.Project) error
	Update(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id int64) error
}

// StageRepo persists stages and the per-project order index.
type StageRepo interface {
	Get(ctx context.Context, id int64) (*stage.Stage, error)
	// ListByProject returns the project's stages sorted by Order ascending.
	ListByProject(ctx context.Context, projectID int64) ([]stage.Stage, error)
	// OrderTaken reports whether a stage already holds the given order
	// within the project.
	OrderTaken(ctx context.Context, projectID int64, order int) (bool, error)
	// ShiftOrdersUp bulk-increments Order by one for every stage of the
	// project with Order >= fromOrder. The update is applied descending so
	// no intermediate state duplicates an order value.
	ShiftOrdersUp(ctx context.Context, projectID int64, fromOrder int) error
	// Create assigns the ID on the given entity.
	Create(ctx context.Context, s *stage.Stage) error
	Update(ctx context.Context, s *stage.Stage) error
	Delete(ctx context.Context, id int64) error
}

// ActivityRepo persists activities.
type ActivityRepo interface {
	Get(ctx context.Context, id int64) (*activity.Activity, error)
	ListByStage(ctx context.Context, stageID int64) ([]activity.Activity, error)
	CountByStage(ctx context.Context, stageID int64) (int, error)
	// CountUnsettledByStage counts activities outside {completed, cancelled}.
	CountUnsettledByStage(ctx context.Context, stageID int64) (int, error)
	// Create assigns the ID on the given entity.
	Create(ctx context.Context, a *activity.Activity) error
	Update(ctx context.Context, a *activity.Activity) error
	Delete(ctx context.Context, id int64) error
	DeleteByStage(ctx context.Context, stageID int64) error
}

// BudgetRepo persists the one-budget-per-stage records.
type BudgetRepo interface {
	Get(ctx context.Context, id int64) (*budget.Budget, error)
	GetByStage(ctx context.Context, stageID int64) (*budget.Budget, error)
	// SumApprovedByProject returns the sum of approved amounts across all
	// budgets of the project's stages. Zero when the project has none.
	SumApprovedByProject(ctx context.Context, projectID int64) (decimal.Decimal, error)
	// SumSpentByProject returns the executed spend across the project.
	SumSpentByProject(ctx context.Context, projectID int64) (decimal.Decimal, error)
	// Create assigns the ID on the given entity.
	Create(ctx context.Context, b *budget.Budget) error
	Update(ctx context.Context, b *budget.Budget) error
	DeleteByStage(ctx context.Context, stageID int64) error
}
