package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// UpsertSetRecord writes a set record, replacing any live record with the
// same (session, exercise, set number, set type) key. Last write wins.
func (db *DB) UpsertSetRecord(ctx context.Context, userID int, sessionID uuid.UUID, rec models.SetRecord) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO set_records (id, user_id, session_id, exercise_id, set_number, set_type,
			weight_kg, reps, rir, estimated_1rm, logged_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (session_id, exercise_id, set_number, set_type) DO UPDATE
			SET id = $1, weight_kg = $7, reps = $8, rir = $9,
			    estimated_1rm = $10, logged_at = $11
	`, rec.ID, userID, sessionID, rec.ExerciseID, rec.SetNumber, rec.SetType,
		rec.WeightKg, rec.Reps, rec.RIR, rec.Estimated1RM, rec.LoggedAt)
	if err != nil {
		return fmt.Errorf("upserting set record: %w", err)
	}
	return nil
}

// DeleteSetRecord removes one record by ID.
func (db *DB) DeleteSetRecord(ctx context.Context, userID int, recordID uuid.UUID) error {
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM set_records WHERE id = $1 AND user_id = $2`, recordID, userID)
	if err != nil {
		return fmt.Errorf("deleting set record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set record %s not found", recordID)
	}
	return nil
}

// ExerciseHistory returns prior sessions of an exercise, most recent
// first, up to limit sessions. Sets within a session are ordered warmups
// first, then work sets by set number.
func (db *DB) ExerciseHistory(ctx context.Context, userID int, exerciseID uuid.UUID, limit int) ([]models.HistorySession, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.session_id, s.started_at, r.id, r.set_number, r.set_type,
		       r.weight_kg, r.reps, r.rir, r.estimated_1rm, r.logged_at
		FROM set_records r
		JOIN sessions s ON s.id = r.session_id
		WHERE r.user_id = $1 AND r.exercise_id = $2 AND s.finished_at IS NOT NULL
		  AND r.session_id IN (
			SELECT s2.id FROM sessions s2
			JOIN set_records r2 ON r2.session_id = s2.id
			WHERE r2.user_id = $1 AND r2.exercise_id = $2 AND s2.finished_at IS NOT NULL
			GROUP BY s2.id ORDER BY MAX(s2.started_at) DESC LIMIT $3
		  )
		ORDER BY s.started_at DESC,
		         CASE r.set_type WHEN 'warmup' THEN 0 ELSE 1 END,
		         r.set_number ASC
	`, userID, exerciseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exercise history: %w", err)
	}
	defer rows.Close()

	var out []models.HistorySession
	for rows.Next() {
		var (
			sessionID uuid.UUID
			date      time.Time
			rec       models.SetRecord
		)
		rec.ExerciseID = exerciseID
		if err := rows.Scan(&sessionID, &date, &rec.ID, &rec.SetNumber, &rec.SetType,
			&rec.WeightKg, &rec.Reps, &rec.RIR, &rec.Estimated1RM, &rec.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].SessionID != sessionID {
			out = append(out, models.HistorySession{SessionID: sessionID, Date: date})
		}
		last := &out[len(out)-1]
		last.Sets = append(last.Sets, rec)
	}
	return out, rows.Err()
}

// QuerySetRecords retrieves logged sets in a date range, optionally
// filtered by exercise name (partial match).
func (db *DB) QuerySetRecords(ctx context.Context, userID int, start, end time.Time, exerciseFilter string) ([]models.SetRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.id, r.exercise_id, r.set_number, r.set_type,
		       r.weight_kg, r.reps, r.rir, r.estimated_1rm, r.logged_at
		FROM set_records r
		JOIN exercises e ON e.id = r.exercise_id
		WHERE r.user_id = $1 AND r.logged_at >= $2 AND r.logged_at < $3
		  AND ($4 = '' OR e.name ILIKE '%' || $4 || '%')
		ORDER BY r.logged_at DESC, r.set_number ASC
	`, userID, start, end, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying set records: %w", err)
	}
	defer rows.Close()

	var out []models.SetRecord
	for rows.Next() {
		var r models.SetRecord
		if err := rows.Scan(&r.ID, &r.ExerciseID, &r.SetNumber, &r.SetType,
			&r.WeightKg, &r.Reps, &r.RIR, &r.Estimated1RM, &r.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning set record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertSetRecords batch-inserts imported set data. Returns count
// inserted; records colliding with existing keys are skipped, making
// re-imports idempotent.
func (db *DB) InsertSetRecords(ctx context.Context, userID int, sessionID uuid.UUID, recs []models.SetRecord) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	var inserted int64
	for _, rec := range recs {
		tag, err := db.Pool.Exec(ctx, `
			INSERT INTO set_records (id, user_id, session_id, exercise_id, set_number, set_type,
				weight_kg, reps, rir, estimated_1rm, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			ON CONFLICT DO NOTHING
		`, rec.ID, userID, sessionID, rec.ExerciseID, rec.SetNumber, rec.SetType,
			rec.WeightKg, rec.Reps, rec.RIR, rec.Estimated1RM, rec.LoggedAt)
		if err != nil {
			return inserted, fmt.Errorf("inserting set record: %w", err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// PersonalRecords returns each exercise's best estimated 1RM with the set
// that produced it.
type PersonalRecord struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	ExerciseName string    `json:"exercise_name"`
	Best1RM      float64   `json:"best_1rm"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	LoggedAt     time.Time `json:"logged_at"`
}

// GetPersonalRecords lists per-exercise bests across all work sets.
func (db *DB) GetPersonalRecords(ctx context.Context, userID int) ([]PersonalRecord, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT DISTINCT ON (r.exercise_id)
		       r.exercise_id, e.name, r.estimated_1rm, r.weight_kg, r.reps, r.logged_at
		FROM set_records r
		JOIN exercises e ON e.id = r.exercise_id
		WHERE r.user_id = $1 AND r.set_type = 'work' AND r.estimated_1rm > 0
		ORDER BY r.exercise_id, r.estimated_1rm DESC, r.logged_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying personal records: %w", err)
	}
	defer rows.Close()

	var out []PersonalRecord
	for rows.Next() {
		var pr PersonalRecord
		if err := rows.Scan(&pr.ExerciseID, &pr.ExerciseName, &pr.Best1RM,
			&pr.WeightKg, &pr.Reps, &pr.LoggedAt); err != nil {
			return nil, fmt.Errorf("scanning personal record: %w", err)
		}
		out = append(out, pr)
	}
	return out, rows.Err()
}
