package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySetRecords(ctx context.Context, userID int, start, end time.Time, exerciseFilter string) ([]models.SetRecord, error)
	GetPersonalRecords(ctx context.Context, userID int) ([]storage.PersonalRecord, error)
	ExerciseHistory(ctx context.Context, userID int, exerciseID uuid.UUID, limit int) ([]models.HistorySession, error)
	ListExercises(ctx context.Context) ([]models.Exercise, error)
	ListTemplates(ctx context.Context, userID int) ([]storage.Template, error)
	GetSettings(ctx context.Context, userID int) (models.ProgressionSettings, error)
	GetOneRMOverride(ctx context.Context, userID int, exerciseID uuid.UUID) (*float64, error)
	LatestBodyweight(ctx context.Context, userID int) (float64, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
