package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/project"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

func seedProject() *project.Project {
	return &project.Project{
		ClientID:      1,
		Name:          "Seed",
		StartDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		BudgetCeiling: decimal.NewFromInt(1000),
		Status:        project.StatusInProgress,
	}
}

func TestStore_RollbackOnError(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	var projectID int64
	err := s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p := seedProject()
		if err := tx.Projects().Create(ctx, p); err != nil {
			return err
		}
		projectID = p.ID
		return nil
	})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}

	boom := errors.New("boom")
	err = s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.Projects().Get(ctx, projectID)
		if err != nil {
			return err
		}
		p.Name = "Mutated"
		if err := tx.Projects().Update(ctx, p); err != nil {
			return err
		}
		if err := tx.Projects().Create(ctx, seedProject()); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx() = %v, want boom", err)
	}

	// Both writes of the failed transaction must be gone.
	err = s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p, err := tx.Projects().Get(ctx, projectID)
		if err != nil {
			return err
		}
		if p.Name != "Seed" {
			t.Errorf("Name = %q, want %q", p.Name, "Seed")
		}
		all, err := tx.Projects().List(ctx)
		if err != nil {
			return err
		}
		if len(all) != 1 {
			t.Errorf("project count = %d, want 1", len(all))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verifying: %v", err)
	}
}

func TestStore_CanceledContext(t *testing.T) {
	t.Parallel()

	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithinTx(ctx, func(context.Context, ports.Tx) error {
		t.Error("fn ran despite canceled context")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WithinTx() = %v, want context.Canceled", err)
	}
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()

	s := New()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Projects().Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Projects().Get(1) = %v, want ErrNotFound", err)
		}
		if _, err := tx.Stages().Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Stages().Get(1) = %v, want ErrNotFound", err)
		}
		if _, err := tx.Activities().Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Activities().Get(1) = %v, want ErrNotFound", err)
		}
		if _, err := tx.Budgets().Get(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Budgets().Get(1) = %v, want ErrNotFound", err)
		}
		if err := tx.Stages().Delete(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("Stages().Delete(1) = %v, want ErrNotFound", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx() = %v, want nil", err)
	}
}

func TestStageRepo_ListByProject_Ordered(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	err := s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		p := seedProject()
		if err := tx.Projects().Create(ctx, p); err != nil {
			return err
		}
		for _, order := range []int{3, 1, 2} {
			st := &stage.Stage{
				ProjectID:    p.ID,
				Name:         "Stage",
				Order:        order,
				PlannedStart: p.StartDate,
				PlannedEnd:   p.StartDate.AddDate(0, 1, 0),
				Status:       stage.StatusPlanned,
			}
			if err := tx.Stages().Create(ctx, st); err != nil {
				return err
			}
		}

		stages, err := tx.Stages().ListByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		for i, st := range stages {
			if st.Order != i+1 {
				t.Errorf("position %d: Order = %d, want %d", i, st.Order, i+1)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx() = %v, want nil", err)
	}
}

func TestStore_ReturnedEntitiesAreCopies(t *testing.T) {
	t.Parallel()

	s := New()
	ctx := context.Background()

	var id int64
	err := s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		a := &activity.Activity{StageID: 1, Name: "Original", Status: activity.StatusPending}
		if err := tx.Activities().Create(ctx, a); err != nil {
			return err
		}
		id = a.ID

		got, err := tx.Activities().Get(ctx, a.ID)
		if err != nil {
			return err
		}
		got.Name = "Mutated without Update"
		return nil
	})
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}

	err = s.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		got, err := tx.Activities().Get(ctx, id)
		if err != nil {
			return err
		}
		if got.Name != "Original" {
			t.Errorf("Name = %q, want %q", got.Name, "Original")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("verifying: %v", err)
	}
}
