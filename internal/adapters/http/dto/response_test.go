package dto_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/domain/activity"
	"github.com/phaseline/phaseline/internal/domain/budget"
	"github.com/phaseline/phaseline/internal/domain/stage"
	"github.com/phaseline/phaseline/internal/ports"
)

var testDate = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

func TestToStageResponse(t *testing.T) {
	t.Parallel()

	end := testDate.AddDate(0, 1, 0)
	s := stage.Stage{
		ID:           4,
		ProjectID:    2,
		Name:         "Build",
		Order:        3,
		PlannedStart: testDate,
		PlannedEnd:   end,
		ActualStart:  &testDate,
		Progress:     55,
		Status:       stage.StatusInProgress,
	}

	got := dto.ToStageResponse(&s)

	if got.PlannedStart != "2026-03-10" {
		t.Errorf("PlannedStart = %q, want %q", got.PlannedStart, "2026-03-10")
	}
	if got.ActualStart == nil || *got.ActualStart != "2026-03-10" {
		t.Errorf("ActualStart = %v, want 2026-03-10", got.ActualStart)
	}
	if got.ActualEnd != nil {
		t.Errorf("ActualEnd = %v, want nil", got.ActualEnd)
	}
	if got.Status != "in_progress" {
		t.Errorf("Status = %q, want %q", got.Status, "in_progress")
	}
	if got.Order != 3 || got.Progress != 55 {
		t.Errorf("Order, Progress = %d, %d, want 3, 55", got.Order, got.Progress)
	}
}

func TestStageResponse_NullDatesOnWire(t *testing.T) {
	t.Parallel()

	s := stage.Stage{
		ID:           1,
		ProjectID:    1,
		Name:         "Planned only",
		Order:        1,
		PlannedStart: testDate,
		PlannedEnd:   testDate.AddDate(0, 1, 0),
		Status:       stage.StatusPlanned,
	}

	raw, err := json.Marshal(dto.ToStageResponse(&s))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Unstamped dates must serialize as explicit nulls, not be omitted.
	if !strings.Contains(string(raw), `"actual_start":null`) {
		t.Errorf("body %s missing \"actual_start\":null", raw)
	}
	if !strings.Contains(string(raw), `"actual_end":null`) {
		t.Errorf("body %s missing \"actual_end\":null", raw)
	}
}

func TestToBudgetResponse_DecimalStrings(t *testing.T) {
	t.Parallel()

	b := budget.Budget{
		ID:         7,
		StageID:    4,
		Approved:   decimal.RequireFromString("1500.50"),
		Spent:      decimal.RequireFromString("200.25"),
		Currency:   "MXN",
		ApprovedAt: &testDate,
	}

	got := dto.ToBudgetResponse(&b)

	if got.Approved != "1500.5" {
		t.Errorf("Approved = %q, want %q", got.Approved, "1500.5")
	}
	if got.Spent != "200.25" {
		t.Errorf("Spent = %q, want %q", got.Spent, "200.25")
	}
	if got.ApprovedAt == nil || *got.ApprovedAt != "2026-03-10" {
		t.Errorf("ApprovedAt = %v, want 2026-03-10", got.ApprovedAt)
	}
}

func TestToActivityListResponse(t *testing.T) {
	t.Parallel()

	activities := []activity.Activity{
		{ID: 1, StageID: 2, Name: "One", Status: activity.StatusPending},
		{ID: 2, StageID: 2, Name: "Two", Status: activity.StatusInProgress, Progress: 30},
	}

	got := dto.ToActivityListResponse(activities)

	if got.Count != 2 {
		t.Errorf("Count = %d, want 2", got.Count)
	}
	if len(got.Activities) != 2 {
		t.Fatalf("Activities has %d entries, want 2", len(got.Activities))
	}
	if got.Activities[1].Progress != 30 {
		t.Errorf("Activities[1].Progress = %d, want 30", got.Activities[1].Progress)
	}

	empty := dto.ToActivityListResponse(nil)
	if empty.Count != 0 || empty.Activities == nil {
		t.Errorf("empty list = %+v, want zero count with non-nil slice", empty)
	}
}

func TestToBulkProgressResponse(t *testing.T) {
	t.Parallel()

	result := &ports.BulkProgressResult{
		Updated: []activity.Activity{
			{ID: 1, StageID: 2, Name: "One", Progress: 80, Status: activity.StatusInProgress},
		},
		Errors: []ports.BulkProgressError{
			{ActivityID: 9, Err: errors.New("activity 9: not found")},
		},
	}

	got := dto.ToBulkProgressResponse(result)

	if got.Total != 2 || got.Succeeded != 1 || got.Failed != 1 {
		t.Errorf("counters = {Total: %d, Succeeded: %d, Failed: %d}, want {2, 1, 1}",
			got.Total, got.Succeeded, got.Failed)
	}
	if len(got.Errors) != 1 || got.Errors[0].ActivityID != 9 {
		t.Fatalf("Errors = %+v, want one entry for activity 9", got.Errors)
	}
	if got.Errors[0].Message != "activity 9: not found" {
		t.Errorf("Errors[0].Message = %q, want %q", got.Errors[0].Message, "activity 9: not found")
	}
}
