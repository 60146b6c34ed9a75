package dto_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phaseline/phaseline/internal/adapters/http/dto"
	"github.com/phaseline/phaseline/internal/domain"
)

func TestNewErrorResponse_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
	}{
		{
			name:       "ErrNotFound maps to 404",
			err:        domain.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "ErrValidation maps to 400",
			err:        &domain.ValidationError{Fields: map[string]string{"name": "is required"}},
			wantStatus: http.StatusBadRequest,
			wantTitle:  "Bad Request",
		},
		{
			name:       "ErrConflict maps to 409",
			err:        domain.ErrConflict,
			wantStatus: http.StatusConflict,
			wantTitle:  "Conflict",
		},
		{
			name:       "ErrConcurrentModification maps to 409",
			err:        domain.ErrConcurrentModification,
			wantStatus: http.StatusConflict,
			wantTitle:  "Conflict",
		},
		{
			name:       "ErrRule maps to 422",
			err:        domain.ErrRule,
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
		},
		{
			name:       "ErrBudgetExceeded maps to 422",
			err:        domain.ErrBudgetExceeded,
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
		},
		{
			name:       "ErrInvalidTransition maps to 422",
			err:        domain.ErrInvalidTransition,
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
		},
		{
			name:       "ErrDeletionBlocked maps to 422",
			err:        domain.ErrDeletionBlocked,
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
		},
		{
			name:       "unknown error maps to 500",
			err:        errors.New("oops"),
			wantStatus: http.StatusInternalServerError,
			wantTitle:  "Internal Server Error",
		},
		{
			name:       "wrapped ErrNotFound preserves mapping",
			err:        fmt.Errorf("fetching stage: %w", domain.ErrNotFound),
			wantStatus: http.StatusNotFound,
			wantTitle:  "Not Found",
		},
		{
			name:       "wrapped ErrTooEarly preserves mapping",
			err:        fmt.Errorf("%w: planned start 2026-09-01", domain.ErrTooEarly),
			wantStatus: http.StatusUnprocessableEntity,
			wantTitle:  "Unprocessable Entity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/api/v1/stages/42", nil)
			got := dto.NewErrorResponse(r, tt.err)

			if got.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", got.Status, tt.wantStatus)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
		})
	}
}

func TestNewErrorResponse_Fields(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
	err := domain.ErrNotFound

	got := dto.NewErrorResponse(r, err)

	if got.Type != "about:blank" {
		t.Errorf("Type = %q, want %q", got.Type, "about:blank")
	}
	if got.Instance != "/api/v1/projects" {
		t.Errorf("Instance = %q, want %q", got.Instance, "/api/v1/projects")
	}
	if got.Detail != err.Error() {
		t.Errorf("Detail = %q, want %q", got.Detail, err.Error())
	}
}

func TestNewErrorResponse_ValidationDetails(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/projects", nil)
	err := &domain.ValidationError{Fields: map[string]string{
		"name":      "is required",
		"client_id": "must be positive, got 0",
	}}

	got := dto.NewErrorResponse(r, err)

	if len(got.Errors) != 2 {
		t.Fatalf("Errors has %d entries, want 2", len(got.Errors))
	}
	// Details come sorted by location.
	if got.Errors[0].Location != "body.client_id" {
		t.Errorf("Errors[0].Location = %q, want %q", got.Errors[0].Location, "body.client_id")
	}
	if got.Errors[1].Location != "body.name" {
		t.Errorf("Errors[1].Location = %q, want %q", got.Errors[1].Location, "body.name")
	}
	if got.Errors[1].Message != "is required" {
		t.Errorf("Errors[1].Message = %q, want %q", got.Errors[1].Message, "is required")
	}
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/budgets/9", nil)

	dto.WriteErrorResponse(w, r, domain.ErrOverspendRejected)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Errorf("Content-Type = %q, want %q", ct, "application/problem+json")
	}

	var body dto.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if body.Status != http.StatusUnprocessableEntity {
		t.Errorf("body.Status = %d, want %d", body.Status, http.StatusUnprocessableEntity)
	}
	if body.Instance != "/api/v1/budgets/9" {
		t.Errorf("body.Instance = %q, want %q", body.Instance, "/api/v1/budgets/9")
	}
}
