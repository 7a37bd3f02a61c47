package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// ListExercises returns the exercise catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, COALESCE(equipment, ''), COALESCE(body_part, '')
		 FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var out []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.Equipment, &e.BodyPart); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetExercise fetches one catalog entry.
func (db *DB) GetExercise(ctx context.Context, id uuid.UUID) (*models.Exercise, error) {
	var e models.Exercise
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(equipment, ''), COALESCE(body_part, '')
		 FROM exercises WHERE id = $1`, id).
		Scan(&e.ID, &e.Name, &e.Equipment, &e.BodyPart)
	if err != nil {
		return nil, fmt.Errorf("fetching exercise %s: %w", id, err)
	}
	return &e, nil
}

// UpsertExercise creates or renames a catalog entry by name.
func (db *DB) UpsertExercise(ctx context.Context, e models.Exercise) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO exercises (id, name, equipment, body_part)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE
			SET equipment = COALESCE(NULLIF($3, ''), exercises.equipment),
			    body_part = COALESCE(NULLIF($4, ''), exercises.body_part)
		RETURNING id
	`, e.ID, e.Name, e.Equipment, e.BodyPart).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("upserting exercise: %w", err)
	}
	return id, nil
}

// TemplateExercises returns a template's exercise slots in position order,
// each with its per-set plan and progression rule.
func (db *DB) TemplateExercises(ctx context.Context, templateID uuid.UUID) ([]models.TemplateExercise, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT te.id, te.exercise_id, e.name, te.position, te.progression
		FROM template_exercises te
		JOIN exercises e ON e.id = te.exercise_id
		WHERE te.template_id = $1
		ORDER BY te.position ASC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("querying template exercises: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateExercise
	for rows.Next() {
		var (
			te       models.TemplateExercise
			progJSON []byte
		)
		te.TemplateID = templateID
		if err := rows.Scan(&te.ID, &te.ExerciseID, &te.Name, &te.Position, &progJSON); err != nil {
			return nil, fmt.Errorf("scanning template exercise: %w", err)
		}
		if len(progJSON) > 0 {
			if err := json.Unmarshal(progJSON, &te.Progression); err != nil {
				return nil, fmt.Errorf("parsing progression for %s: %w", te.Name, err)
			}
		}
		out = append(out, te)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		sets, err := db.templateSets(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Sets = sets
	}
	return out, nil
}

func (db *DB) templateSets(ctx context.Context, templateExerciseID uuid.UUID) ([]models.TemplateSetSpec, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT set_number, reps_min, reps_max, target_rir,
		       percentage, absolute_weight_kg, is_backoff, backoff_percent
		FROM template_sets
		WHERE template_exercise_id = $1
		ORDER BY set_number ASC
	`, templateExerciseID)
	if err != nil {
		return nil, fmt.Errorf("querying template sets: %w", err)
	}
	defer rows.Close()

	var out []models.TemplateSetSpec
	for rows.Next() {
		var s models.TemplateSetSpec
		if err := rows.Scan(&s.SetNumber, &s.RepsMin, &s.RepsMax, &s.TargetRIR,
			&s.Percentage, &s.AbsoluteWeightKg, &s.IsBackoff, &s.BackoffPercent); err != nil {
			return nil, fmt.Errorf("scanning template set: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
