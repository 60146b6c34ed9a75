package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/phaseline/phaseline/internal/app/fanout"
	"github.com/phaseline/phaseline/internal/domain"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

// bulkProgressWorkers bounds the concurrency of BulkSetProgress. Each item
// is an independent transaction, so parallelism is safe; the bound keeps a
// large batch from monopolizing store connections.
const bulkProgressWorkers = 4

// Compile-time check that ActivityService implements ports.ActivityService.
var _ ports.ActivityService = (*ActivityService)(nil)

// ActivityService implements ports.ActivityService. Every mutation cascades
// the stage and project recompute synchronously inside the same transaction.
type ActivityService struct {
	store  ports.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewActivityService creates an ActivityService on top of the given store.
func NewActivityService(store ports.Store, logger *slog.Logger) *ActivityService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ActivityService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create adds an activity to a stage. The first activity of a planned stage
// implicitly requests the stage start: the start preconditions are checked
// exactly as for an explicit transition, and when they fail the creation
// fails with the same error.
func (s *ActivityService) Create(ctx context.Context, stageID int64, a *activity.Activity) (*activity.Activity, error) {
	s.logger.InfoContext(ctx, "creating activity",
		slog.Int64("stage_id", stageID),
		slog.String("name", a.Name),
	)

	a.StageID = stageID
	if a.Status == "" {
		a.Status = activity.StatusPending
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		st, err := tx.Stages().Get(ctx, stageID)
		if err != nil {
			return err
		}
		if st.Status.IsTerminal() {
			return fmt.Errorf("%w: stage %d is %s", domain.ErrInvalidTransition, st.ID, st.Status)
		}

		today := s.now()

		if st.Status == stage.StatusPlanned {
			count, err := tx.Activities().CountByStage(ctx, stageID)
			if err != nil {
				return fmt.Errorf("counting activities for stage %d: %w", stageID, err)
			}
			if count == 0 {
				p, err := tx.Projects().Get(ctx, st.ProjectID)
				if err != nil {
					return err
				}
				if err := checkStartable(p, st, today); err != nil {
					return err
				}
				st.Status = stage.StatusInProgress
				start := today
				st.ActualStart = &start
			}
		}

		if err := tx.Activities().Create(ctx, a); err != nil {
			return fmt.Errorf("persisting activity: %w", err)
		}
		return recomputeStage(ctx, tx, st, today)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create activity",
			slog.String("operation", "Create"),
			slog.Int64("stage_id", stageID),
			slog.Any("error", err),
		)
		return nil, err
	}

	return a, nil
}

// ListByStage returns the stage's activities.
func (s *ActivityService) ListByStage(ctx context.Context, stageID int64) ([]activity.Activity, error) {
	var activities []activity.Activity
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		if _, err := tx.Stages().Get(ctx, stageID); err != nil {
			return err
		}
		var err error
		activities, err = tx.Activities().ListByStage(ctx, stageID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return activities, nil
}

// Get returns a single activity by ID.
func (s *ActivityService) Get(ctx context.Context, id int64) (*activity.Activity, error) {
	var a *activity.Activity
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		a, err = tx.Activities().Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Update applies metadata changes; progress goes through SetProgress.
func (s *ActivityService) Update(ctx context.Context, id int64, upd ports.ActivityUpdate) (*activity.Activity, error) {
	s.logger.InfoContext(ctx, "updating activity", slog.Int64("id", id))

	var a *activity.Activity
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		a, err = tx.Activities().Get(ctx, id)
		if err != nil {
			return err
		}

		if upd.Name != nil {
			a.Name = *upd.Name
		}
		if upd.Kind != nil {
			a.Kind = *upd.Kind
		}
		if upd.PlannedStart != nil {
			a.PlannedStart = upd.PlannedStart
		}
		if upd.PlannedEnd != nil {
			a.PlannedEnd = upd.PlannedEnd
		}

		if err := a.Validate(); err != nil {
			return err
		}
		return tx.Activities().Update(ctx, a)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update activity",
			slog.String("operation", "Update"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return a, nil
}

// Delete removes the activity and recomputes its stage: removing any
// activity changes the stage's average.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	s.logger.InfoContext(ctx, "deleting activity", slog.Int64("id", id))

	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		a, err := tx.Activities().Get(ctx, id)
		if err != nil {
			return err
		}
		st, err := tx.Stages().Get(ctx, a.StageID)
		if err != nil {
			return err
		}

		if err := tx.Activities().Delete(ctx, id); err != nil {
			return fmt.Errorf("deleting activity %d: %w", id, err)
		}
		return recomputeStage(ctx, tx, st, s.now())
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to delete activity",
			slog.String("operation", "Delete"),
			slog.Int64("id", id),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

// SetProgress updates the completion percentage, derives the activity state,
// and cascades the stage and project recompute before returning.
func (s *ActivityService) SetProgress(ctx context.Context, id int64, progress int) (*activity.Activity, error) {
	s.logger.InfoContext(ctx, "setting activity progress",
		slog.Int64("id", id),
		slog.Int("progress", progress),
	)

	var a *activity.Activity
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		a, err = tx.Activities().Get(ctx, id)
		if err != nil {
			return err
		}

		today := s.now()
		if err := a.ApplyProgress(progress, today); err != nil {
			return err
		}
		if err := tx.Activities().Update(ctx, a); err != nil {
			return fmt.Errorf("persisting activity %d: %w", id, err)
		}

		st, err := tx.Stages().Get(ctx, a.StageID)
		if err != nil {
			return err
		}
		return recomputeStage(ctx, tx, st, today)
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to set activity progress",
			slog.String("operation", "SetProgress"),
			slog.Int64("id", id),
			slog.Int("progress", progress),
			slog.Any("error", err),
		)
		return nil, err
	}

	return a, nil
}

// BulkSetProgress fans the updates out over a bounded worker pool with
// partial-success semantics. Each item runs as its own SetProgress
// transaction; one activity failing does not block the rest.
func (s *ActivityService) BulkSetProgress(ctx context.Context, updates []ports.ProgressUpdate) (*ports.BulkProgressResult, error) {
	s.logger.InfoContext(ctx, "bulk progress update", slog.Int("count", len(updates)))

	results := fanout.Run(ctx, bulkProgressWorkers, updates,
		func(ctx context.Context, upd ports.ProgressUpdate) (*activity.Activity, error) {
			return s.SetProgress(ctx, upd.ActivityID, upd.Progress)
		})

	out := &ports.BulkProgressResult{}
	for i, res := range results {
		if res.Err != nil {
			out.Errors = append(out.Errors, ports.BulkProgressError{
				ActivityID: updates[i].ActivityID,
				Err:        res.Err,
			})
			continue
		}
		out.Updated = append(out.Updated, *res.Value)
	}
	return out, nil
}
