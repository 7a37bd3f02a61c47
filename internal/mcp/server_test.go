package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 90 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 90 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 89*24 || diff.Hours() > 91*24 {
		t.Errorf("default range = %.0f hours, want about 90 days", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-01-01", start)
	}
	if end.Year() != 2026 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2026-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeDS is an in-memory DataSource for handler tests.
type fakeDS struct {
	exercises []models.Exercise
}

func (f *fakeDS) QuerySetRecords(context.Context, int, time.Time, time.Time, string) ([]models.SetRecord, error) {
	return nil, nil
}
func (f *fakeDS) GetPersonalRecords(context.Context, int) ([]storage.PersonalRecord, error) {
	return nil, nil
}
func (f *fakeDS) ExerciseHistory(context.Context, int, uuid.UUID, int) ([]models.HistorySession, error) {
	return nil, nil
}
func (f *fakeDS) ListExercises(context.Context) ([]models.Exercise, error) {
	return f.exercises, nil
}
func (f *fakeDS) ListTemplates(context.Context, int) ([]storage.Template, error) { return nil, nil }
func (f *fakeDS) GetSettings(context.Context, int) (models.ProgressionSettings, error) {
	return models.DefaultSettings(), nil
}
func (f *fakeDS) GetOneRMOverride(context.Context, int, uuid.UUID) (*float64, error) {
	return nil, nil
}
func (f *fakeDS) LatestBodyweight(context.Context, int) (float64, error) { return 0, nil }

// TestFindExercise verifies exact matches win over partial matches and
// unknown names error.
func TestFindExercise(t *testing.T) {
	ds := &fakeDS{exercises: []models.Exercise{
		{ID: uuid.New(), Name: "Bench Press"},
		{ID: uuid.New(), Name: "Incline Bench Press"},
		{ID: uuid.New(), Name: "Squat"},
	}}
	h := &handlers{ds: ds}

	got, err := h.findExercise(context.Background(), "bench press")
	if err != nil {
		t.Fatalf("findExercise: %v", err)
	}
	if got.Name != "Bench Press" {
		t.Errorf("exact match = %q, want Bench Press", got.Name)
	}

	got, err = h.findExercise(context.Background(), "incline")
	if err != nil {
		t.Fatalf("findExercise: %v", err)
	}
	if got.Name != "Incline Bench Press" {
		t.Errorf("partial match = %q, want Incline Bench Press", got.Name)
	}

	if _, err := h.findExercise(context.Background(), "leg press"); err == nil {
		t.Error("expected error for unknown exercise")
	}
}
