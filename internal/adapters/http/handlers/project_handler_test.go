package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
)

func TestCreateProject(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := do(t, h, http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{
			ClientID:      7,
			Name:          "CRM rollout",
			StartDate:     "2026-02-01",
			BudgetCeiling: "50000",
		})

		requireStatus(t, rec, http.StatusCreated)
		resp := decodeJSON[dto.ProjectResponse](t, rec)
		if resp.ID == 0 {
			t.Error("ID = 0, want assigned")
		}
		if resp.Status != "in_progress" {
			t.Errorf("Status = %q, want %q", resp.Status, "in_progress")
		}
		if resp.BudgetCeiling != "50000" {
			t.Errorf("BudgetCeiling = %q, want %q", resp.BudgetCeiling, "50000")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewBufferString("{bad"))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		requireStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := do(t, h, http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{})

		requireStatus(t, rec, http.StatusBadRequest)
		if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
			t.Errorf("Content-Type = %q, want %q", ct, "application/problem+json")
		}
		resp := decodeJSON[dto.ErrorResponse](t, rec)
		if len(resp.Errors) == 0 {
			t.Error("Errors is empty, want field details")
		}
	})
}

func TestListProjects(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)

	createProject(t, h, "1000")
	createProject(t, h, "2000")

	rec := do(t, h, http.MethodGet, "/api/v1/projects", nil)

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ProjectListResponse](t, rec)
	if resp.Count != 2 || len(resp.Projects) != 2 {
		t.Errorf("Count = %d with %d projects, want 2 and 2", resp.Count, len(resp.Projects))
	}
}

func TestGetProject(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)
		p := createProject(t, h, "1000")

		rec := do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d", p.ID), nil)

		requireStatus(t, rec, http.StatusOK)
		resp := decodeJSON[dto.ProjectResponse](t, rec)
		if resp.ID != p.ID {
			t.Errorf("ID = %d, want %d", resp.ID, p.ID)
		}
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := do(t, h, http.MethodGet, "/api/v1/projects/999", nil)
		requireStatus(t, rec, http.StatusNotFound)
	})

	t.Run("non-numeric ID", func(t *testing.T) {
		t.Parallel()
		h := newTestHandler(t)

		rec := do(t, h, http.MethodGet, "/api/v1/projects/abc", nil)
		requireStatus(t, rec, http.StatusBadRequest)
	})
}

func TestUpdateProject(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	p := createProject(t, h, "1000")

	name := "Renamed"
	rec := do(t, h, http.MethodPatch, fmt.Sprintf("/api/v1/projects/%d", p.ID),
		dto.UpdateProjectRequest{Name: &name})

	requireStatus(t, rec, http.StatusOK)
	resp := decodeJSON[dto.ProjectResponse](t, rec)
	if resp.Name != "Renamed" {
		t.Errorf("Name = %q, want %q", resp.Name, "Renamed")
	}
}

func TestDeleteProject(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	p := createProject(t, h, "1000")
	st := createStage(t, h, p.ID, 1, "100")

	rec := do(t, h, http.MethodDelete, fmt.Sprintf("/api/v1/projects/%d", p.ID), nil)
	requireStatus(t, rec, http.StatusNoContent)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/stages/%d", st.Stage.ID), nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestGetProjectSummary(t *testing.T) {
	t.Parallel()
	h := newTestHandler(t)
	p := createProject(t, h, "1000")
	st := createStage(t, h, p.ID, 1, "400")
	a := createActivity(t, h, st.Stage.ID, "Work")

	progress := 50
	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/activities/%d/progress", a.ID),
		dto.SetProgressRequest{Progress: &progress})
	requireStatus(t, rec, http.StatusOK)

	rec = do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/projects/%d/summary", p.ID), nil)
	requireStatus(t, rec, http.StatusOK)

	resp := decodeJSON[dto.ProjectSummaryResponse](t, rec)
	if resp.TotalStages != 1 {
		t.Errorf("TotalStages = %d, want 1", resp.TotalStages)
	}
	if resp.OverallProgress != 50 {
		t.Errorf("OverallProgress = %d, want 50", resp.OverallProgress)
	}
	if resp.BudgetRemaining != "1000" {
		t.Errorf("BudgetRemaining = %q, want %q (nothing spent yet)", resp.BudgetRemaining, "1000")
	}
}
