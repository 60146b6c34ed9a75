package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apphttp "github.com/phaseline/phaseline/internal/adapters/http"
	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/adapters/http/handlers"
	"github.com/phaseline/phaseline/internal/adapters/store/memory"
	"github.com/phaseline/phaseline/internal/app"
	"github.com/phaseline/phaseline/internal/platform/health"
)

// newTestHandler wires the full router onto real services backed by the
// in-memory store. Handler tests run against the same stack the server
// mounts, minus middleware.
func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	store := memory.New()
	logger := slog.New(slog.DiscardHandler)

	registry := health.New()
	registry.Register(store)

	return apphttp.NewRouter(
		handlers.NewProjectHandler(app.NewProjectService(store, logger)),
		handlers.NewStageHandler(app.NewStageService(store, logger)),
		handlers.NewActivityHandler(app.NewActivityService(store, logger)),
		handlers.NewBudgetHandler(app.NewBudgetService(store, logger)),
		handlers.NewHealthHandler(registry),
	)
}

// The services run on the real clock, so fixture dates are taken relative
// to the current day.
func dateOffset(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(dto.DateLayout)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		reader = &bytes.Buffer{}
		if err := json.NewEncoder(reader).Encode(body); err != nil {
			t.Fatalf("failed to encode JSON body: %v", err)
		}
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var result T
	if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return result
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func createProject(t *testing.T, h http.Handler, ceiling string) dto.ProjectResponse {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/api/v1/projects", dto.CreateProjectRequest{
		ClientID:      1,
		Name:          "Fixture project",
		StartDate:     dateOffset(-30),
		BudgetCeiling: ceiling,
	})
	requireStatus(t, rec, http.StatusCreated)
	return decodeJSON[dto.ProjectResponse](t, rec)
}

func createStage(t *testing.T, h http.Handler, projectID int64, order int, budget string) dto.StageWithBudgetResponse {
	t.Helper()

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/projects/%d/stages", projectID),
		dto.CreateStageRequest{
			Name:          "Fixture stage",
			Order:         order,
			PlannedStart:  dateOffset(0),
			PlannedEnd:    dateOffset(30),
			InitialBudget: budget,
		})
	requireStatus(t, rec, http.StatusCreated)
	return decodeJSON[dto.StageWithBudgetResponse](t, rec)
}

func createActivity(t *testing.T, h http.Handler, stageID int64, name string) dto.ActivityResponse {
	t.Helper()

	rec := do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/stages/%d/activities", stageID),
		dto.CreateActivityRequest{Name: name})
	requireStatus(t, rec, http.StatusCreated)
	return decodeJSON[dto.ActivityResponse](t, rec)
}
