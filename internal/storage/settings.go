package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/liftlog/internal/models"
)

// GetSettings returns the lifter's progression settings, falling back to
// defaults when none were ever saved.
func (db *DB) GetSettings(ctx context.Context, userID int) (models.ProgressionSettings, error) {
	var s models.ProgressionSettings
	err := db.Pool.QueryRow(ctx, `
		SELECT rounding_increment_kg, max_plate_kg, notation,
		       aggressiveness_rate, deload_rate, one_rm_update, sex
		FROM progression_settings WHERE user_id = $1
	`, userID).Scan(&s.RoundingIncrementKg, &s.MaxPlateKg, &s.Notation,
		&s.AggressivenessRate, &s.DeloadRate, &s.OneRMUpdate, &s.Sex)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.ProgressionSettings{}, fmt.Errorf("querying settings: %w", err)
	}
	return s, nil
}

// SaveSettings upserts the lifter's progression settings.
func (db *DB) SaveSettings(ctx context.Context, userID int, s models.ProgressionSettings) error {
	if s.RoundingIncrementKg <= 0 {
		return fmt.Errorf("rounding increment must be positive")
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO progression_settings (user_id, rounding_increment_kg, max_plate_kg,
			notation, aggressiveness_rate, deload_rate, one_rm_update, sex)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE
			SET rounding_increment_kg = $2, max_plate_kg = $3, notation = $4,
			    aggressiveness_rate = $5, deload_rate = $6, one_rm_update = $7, sex = $8
	`, userID, s.RoundingIncrementKg, s.MaxPlateKg, s.Notation,
		s.AggressivenessRate, s.DeloadRate, s.OneRMUpdate, s.Sex)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// GetOneRMOverride returns the lifter-entered 1RM for an exercise, nil
// when none is stored.
func (db *DB) GetOneRMOverride(ctx context.Context, userID int, exerciseID uuid.UUID) (*float64, error) {
	var v float64
	err := db.Pool.QueryRow(ctx,
		`SELECT one_rm_kg FROM one_rm_overrides WHERE user_id = $1 AND exercise_id = $2`,
		userID, exerciseID).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying 1RM override: %w", err)
	}
	return &v, nil
}

// UpsertOneRMOverride stores a lifter-entered or PR-confirmed 1RM.
func (db *DB) UpsertOneRMOverride(ctx context.Context, userID int, exerciseID uuid.UUID, oneRM float64) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO one_rm_overrides (user_id, exercise_id, one_rm_kg, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, exercise_id) DO UPDATE
			SET one_rm_kg = $3, updated_at = NOW()
	`, userID, exerciseID, oneRM)
	if err != nil {
		return fmt.Errorf("upserting 1RM override: %w", err)
	}
	return nil
}

// BodyweightEntry is one bodyweight log row.
type BodyweightEntry struct {
	MeasuredAt time.Time `json:"measured_at"`
	WeightKg   float64   `json:"weight_kg"`
}

// LogBodyweight appends a bodyweight measurement.
func (db *DB) LogBodyweight(ctx context.Context, userID int, weightKg float64, at time.Time) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO bodyweight_log (user_id, measured_at, weight_kg) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, measured_at) DO UPDATE SET weight_kg = $3`,
		userID, at, weightKg)
	if err != nil {
		return fmt.Errorf("logging bodyweight: %w", err)
	}
	return nil
}

// LatestBodyweight returns the most recent measurement, 0 when the log is
// empty (score formulas treat 0 as unavailable).
func (db *DB) LatestBodyweight(ctx context.Context, userID int) (float64, error) {
	var v float64
	err := db.Pool.QueryRow(ctx,
		`SELECT weight_kg FROM bodyweight_log WHERE user_id = $1
		 ORDER BY measured_at DESC LIMIT 1`, userID).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("querying bodyweight: %w", err)
	}
	return v, nil
}
