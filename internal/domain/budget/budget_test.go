package budget

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
)

// requireValidationField is a test helper that asserts err wraps domain.ErrValidation
// and the resulting ValidationError contains the expected field key.
func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatal("Validate() = nil, want error")
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Errorf("errors.Is(err, ErrValidation) = false, got %v", err)
	}

	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("errors.As(err, *ValidationError) = false, got %T", err)
	}
	if _, ok := verr.Fields[field]; !ok {
		t.Errorf("ValidationError.Fields missing key %q, got %v", field, verr.Fields)
	}
}

func validBudget() Budget {
	return Budget{
		StageID:  1,
		Approved: decimal.NewFromInt(10_000),
		Spent:    decimal.Zero,
		Currency: DefaultCurrency,
	}
}

func TestBudget_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid budget passes", func(t *testing.T) {
		t.Parallel()
		b := validBudget()
		if err := b.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("zero approved is allowed", func(t *testing.T) {
		t.Parallel()
		b := validBudget()
		b.Approved = decimal.Zero
		if err := b.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*Budget)
		field  string
	}{
		{
			name:   "zero stage ID",
			mutate: func(b *Budget) { b.StageID = 0 },
			field:  "stage_id",
		},
		{
			name:   "negative approved",
			mutate: func(b *Budget) { b.Approved = decimal.NewFromInt(-100) },
			field:  "approved",
		},
		{
			name:   "negative spent",
			mutate: func(b *Budget) { b.Spent = decimal.NewFromFloat(-0.01) },
			field:  "spent",
		},
		{
			name:   "empty currency",
			mutate: func(b *Budget) { b.Currency = "" },
			field:  "currency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b := validBudget()
			tt.mutate(&b)
			requireValidationField(t, b.Validate(), tt.field)
		})
	}
}
