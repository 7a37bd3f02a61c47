package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

// TestHandleMeDefault verifies the /api/v1/me endpoint returns the dev
// identity injected by the identity middleware.
func TestHandleMeDefault(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(WithUserInfo(req.Context(), UserInfo{Login: "local", DisplayName: "Local Dev User"}))
	rec := httptest.NewRecorder()

	s.handleMe(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if info.Login != "local" {
		t.Errorf("login = %q, want %q", info.Login, "local")
	}
	if info.DisplayName != "Local Dev User" {
		t.Errorf("display_name = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

// TestParseTimeRange verifies date-only and RFC3339 parsing plus the
// default window.
func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		wantErr bool
		check   func(t *testing.T, start, end time.Time)
	}{
		{
			name:  "default window",
			query: "",
			check: func(t *testing.T, start, end time.Time) {
				if got := end.Sub(start); got < 89*24*time.Hour || got > 91*24*time.Hour {
					t.Errorf("window = %v, want about 90 days", got)
				}
			},
		},
		{
			name:  "date-only range",
			query: "start=2026-01-01&end=2026-01-31",
			check: func(t *testing.T, start, end time.Time) {
				if start.Format("2006-01-02") != "2026-01-01" {
					t.Errorf("start = %v", start)
				}
				// date-only end extends to end of day
				if end.Format("2006-01-02") != "2026-02-01" {
					t.Errorf("end = %v", end)
				}
			},
		},
		{
			name:  "rfc3339",
			query: "start=2026-01-01T08:00:00Z",
			check: func(t *testing.T, start, end time.Time) {
				if start.Hour() != 8 {
					t.Errorf("start hour = %d, want 8", start.Hour())
				}
			},
		},
		{
			name:    "garbage start",
			query:   "start=notadate",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/history?"+tt.query, nil)
			start, end, err := parseTimeRange(req)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimeRange: %v", err)
			}
			tt.check(t, start, end)
		})
	}
}

// TestWriteRunnerError verifies sentinel errors map to the intended HTTP
// statuses.
func TestWriteRunnerError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrSessionClosed, http.StatusConflict},
		{session.ErrIncompleteExercise, http.StatusConflict},
		{session.ErrDuplicateExercise, http.StatusConflict},
		{session.ErrExerciseNotFound, http.StatusNotFound},
		{session.ErrSetNotFound, http.StatusNotFound},
		{session.ErrInvalidSet, http.StatusBadRequest},
		{session.ErrNoReferenceWeight, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", session.ErrReadinessUnavailable), http.StatusConflict},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeRunnerError(rec, tt.err)
		if rec.Code != tt.want {
			t.Errorf("writeRunnerError(%v) status = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

// stubStore satisfies session.Store with no-op persistence for rendering
// tests.
type stubStore struct{}

func (stubStore) ExerciseHistory(context.Context, uuid.UUID, int) ([]models.HistorySession, error) {
	return nil, nil
}
func (stubStore) OneRMOverride(context.Context, uuid.UUID) (*float64, error) { return nil, nil }
func (stubStore) SaveSet(context.Context, uuid.UUID, models.SetRecord) error { return nil }
func (stubStore) DeleteSet(context.Context, uuid.UUID, uuid.UUID) error      { return nil }
func (stubStore) UpsertOneRMOverride(context.Context, uuid.UUID, float64) error {
	return nil
}
func (stubStore) CloseSession(context.Context, uuid.UUID, time.Duration, string) error {
	return nil
}

// TestRenderSession verifies the session view carries each exercise with
// its slot list and session-level state.
func TestRenderSession(t *testing.T) {
	runner := session.New(stubStore{}, models.DefaultSettings(), slog.Default())
	exID := uuid.New()
	err := runner.Start(context.Background(), []models.TemplateExercise{
		{ExerciseID: exID, Name: "Squat", Sets: []models.TemplateSetSpec{
			{SetNumber: 1, RepsMin: 5, RepsMax: 5},
			{SetNumber: 2, RepsMin: 5, RepsMax: 5},
		}},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	ls := &liveSession{runner: runner, userID: 1}
	view := renderSession(ls)

	if view.SessionID != runner.ID() {
		t.Errorf("session ID mismatch")
	}
	if view.Closed {
		t.Error("new session should not be closed")
	}
	if view.IntensityMultiplier != 1.0 {
		t.Errorf("intensity = %v, want 1.0", view.IntensityMultiplier)
	}
	if len(view.Exercises) != 1 {
		t.Fatalf("exercises = %d, want 1", len(view.Exercises))
	}
	ex := view.Exercises[0]
	if ex.Name != "Squat" || ex.TargetSets != 2 {
		t.Errorf("exercise = %+v", ex)
	}
	if len(ex.Slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(ex.Slots))
	}
	if ex.Slots[0].Status != session.StatusActiveWork {
		t.Errorf("first slot status = %q, want active_work", ex.Slots[0].Status)
	}
	if ex.Slots[1].Status != session.StatusFuture {
		t.Errorf("second slot status = %q, want future", ex.Slots[1].Status)
	}
}
