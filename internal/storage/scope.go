package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
)

// UserScope binds a DB to one lifter, adapting the repository methods to
// the narrower interfaces the engine depends on.
type UserScope struct {
	DB     *DB
	UserID int
}

func (u UserScope) ExerciseHistory(ctx context.Context, exerciseID uuid.UUID, limit int) ([]models.HistorySession, error) {
	return u.DB.ExerciseHistory(ctx, u.UserID, exerciseID, limit)
}

func (u UserScope) OneRMOverride(ctx context.Context, exerciseID uuid.UUID) (*float64, error) {
	return u.DB.GetOneRMOverride(ctx, u.UserID, exerciseID)
}

func (u UserScope) SaveSet(ctx context.Context, sessionID uuid.UUID, rec models.SetRecord) error {
	return u.DB.UpsertSetRecord(ctx, u.UserID, sessionID, rec)
}

func (u UserScope) DeleteSet(ctx context.Context, _ uuid.UUID, recordID uuid.UUID) error {
	return u.DB.DeleteSetRecord(ctx, u.UserID, recordID)
}

func (u UserScope) UpsertOneRMOverride(ctx context.Context, exerciseID uuid.UUID, oneRM float64) error {
	return u.DB.UpsertOneRMOverride(ctx, u.UserID, exerciseID, oneRM)
}

func (u UserScope) CloseSession(ctx context.Context, sessionID uuid.UUID, duration time.Duration, notes string) error {
	return u.DB.CloseSession(ctx, u.UserID, sessionID, duration, notes)
}

// Compile-time check: UserScope satisfies the runner's Store.
var _ session.Store = UserScope{}
