// Package budget defines the per-stage Budget record: an approved allocation
// and running spend, capped collectively by the owning project's ceiling.
package budget

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
)

// DefaultCurrency is assigned when a budget is created without an explicit
// currency code. There is no conversion between currencies.
const DefaultCurrency = "MXN"

// Budget is created atomically with its stage and never independently; one
// budget per stage.
type Budget struct {
	ID         int64
	StageID    int64
	Approved   decimal.Decimal
	Spent      decimal.Decimal
	Currency   string
	ApprovedAt *time.Time
}

// Validate checks business rules for the Budget entity.
// Returns a *domain.ValidationError (wrapping domain.ErrValidation) with
// per-field details, or nil if all rules pass.
func (b *Budget) Validate() error {
	fields := make(map[string]string)

	if b.StageID <= 0 {
		fields["stage_id"] = fmt.Sprintf("must be positive, got %d", b.StageID)
	}
	if b.Approved.IsNegative() {
		fields["approved"] = fmt.Sprintf("must not be negative, got %s", b.Approved)
	}
	if b.Spent.IsNegative() {
		fields["spent"] = fmt.Sprintf("must not be negative, got %s", b.Spent)
	}
	if b.Currency == "" {
		fields["currency"] = domain.MsgRequired
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
