package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for errors.Is() checking.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")

	// ErrRule is the base for business-rule violations. Every specific rule
	// sentinel below wraps it, so callers can match the whole class with
	// errors.Is(err, ErrRule) or a single rule with its own sentinel.
	ErrRule = errors.New("business rule violation")

	// ErrConcurrentModification is returned by store adapters when two
	// transactions conflict on the same project's stage set or budget sum.
	// The core never retries; that decision belongs to the caller.
	ErrConcurrentModification = fmt.Errorf("%w: concurrent modification", ErrConflict)
)

// Stage state-machine precondition failures.
var (
	ErrInvalidTransition  = fmt.Errorf("%w: invalid stage transition", ErrRule)
	ErrProjectNotActive   = fmt.Errorf("%w: project is not active", ErrRule)
	ErrTooEarly           = fmt.Errorf("%w: more than 7 days before planned start", ErrRule)
	ErrNoActivities       = fmt.Errorf("%w: stage has no activities", ErrRule)
	ErrIncompleteProgress = fmt.Errorf("%w: stage progress below 100", ErrRule)
	ErrPendingActivities  = fmt.Errorf("%w: stage has pending activities", ErrRule)
)

// Budget ledger failures.
var (
	ErrBudgetExceeded    = fmt.Errorf("%w: project budget ceiling exceeded", ErrRule)
	ErrOverspendRejected = fmt.Errorf("%w: spend exceeds approved amount", ErrRule)
	ErrInvalidAmount     = fmt.Errorf("%w: amount must not be negative", ErrRule)
)

// ErrDeletionBlocked is returned when a stage with activities or executed
// spend is deleted.
var ErrDeletionBlocked = fmt.Errorf("%w: stage deletion blocked", ErrRule)

// ValidationError provides programmatic access to field-level validation
// failures. Use errors.Is(err, ErrValidation) for simple checks, or
// errors.As(err, &verr) to access verr.Fields for per-field details.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MsgRequired is the shared message for missing required fields.
const MsgRequired = "is required"
