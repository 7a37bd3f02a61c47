package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// Template is one saved workout plan.
type Template struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListTemplates returns the lifter's templates, newest first.
func (db *DB) ListTemplates(ctx context.Context, userID int) ([]Template, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, created_at FROM templates
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CreateTemplate stores a template with its exercise slots and per-set
// plans in one transaction.
func (db *DB) CreateTemplate(ctx context.Context, userID int, name string, exercises []models.TemplateExercise) (uuid.UUID, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	templateID := uuid.New()
	if _, err := tx.Exec(ctx,
		`INSERT INTO templates (id, user_id, name) VALUES ($1, $2, $3)`,
		templateID, userID, name); err != nil {
		return uuid.Nil, fmt.Errorf("inserting template: %w", err)
	}

	for i, te := range exercises {
		teID := uuid.New()
		var progJSON []byte
		if te.Progression.Mode != "" {
			progJSON, err = json.Marshal(te.Progression)
			if err != nil {
				return uuid.Nil, fmt.Errorf("encoding progression: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO template_exercises (id, template_id, exercise_id, position, progression)
			VALUES ($1, $2, $3, $4, $5)
		`, teID, templateID, te.ExerciseID, i+1, progJSON); err != nil {
			return uuid.Nil, fmt.Errorf("inserting template exercise: %w", err)
		}
		for _, s := range te.Sets {
			if _, err := tx.Exec(ctx, `
				INSERT INTO template_sets (template_exercise_id, set_number, reps_min, reps_max,
					target_rir, percentage, absolute_weight_kg, is_backoff, backoff_percent)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			`, teID, s.SetNumber, s.RepsMin, s.RepsMax, s.TargetRIR,
				s.Percentage, s.AbsoluteWeightKg, s.IsBackoff, s.BackoffPercent); err != nil {
				return uuid.Nil, fmt.Errorf("inserting template set: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("committing template: %w", err)
	}
	return templateID, nil
}
