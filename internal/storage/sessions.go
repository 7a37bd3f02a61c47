package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSession records the start of a workout session.
func (db *DB) CreateSession(ctx context.Context, userID int, sessionID uuid.UUID, templateID *uuid.UUID, startedAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO sessions (id, user_id, template_id, started_at)
		VALUES ($1, $2, $3, $4)
	`, sessionID, userID, templateID, startedAt)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// CloseSession marks a session finished with its wall-clock duration and
// notes. Idempotent per session.
func (db *DB) CloseSession(ctx context.Context, userID int, sessionID uuid.UUID, duration time.Duration, notes string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE sessions
		SET finished_at = started_at + make_interval(secs => $3), duration_sec = $3, notes = NULLIF($4, '')
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID, int(duration.Seconds()), notes)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}
