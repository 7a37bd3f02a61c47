package models

import (
	"time"

	"github.com/google/uuid"
)

// SetType classifies a logged set.
type SetType string

const (
	SetTypeWork    SetType = "work"
	SetTypeWarmup  SetType = "warmup"
	SetTypeDrop    SetType = "drop"
	SetTypeFailure SetType = "failure"
)

// SetRecord is a single logged set. Identity within a session is the pair
// (ExerciseID, SetNumber, SetType); a newer write for the same pair
// supersedes the older one.
type SetRecord struct {
	ID           uuid.UUID `json:"id"`
	ExerciseID   uuid.UUID `json:"exercise_id"`
	SetNumber    int       `json:"set_number"`
	SetType      SetType   `json:"set_type"`
	WeightKg     float64   `json:"weight_kg"`
	Reps         int       `json:"reps"`
	RIR          *float64  `json:"rir,omitempty"`
	Estimated1RM float64   `json:"estimated_1rm"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Key returns the in-session identity of the record.
func (r SetRecord) Key() SetKey {
	return SetKey{SetNumber: r.SetNumber, SetType: r.SetType}
}

// SetKey identifies a set slot within one exercise of one session.
type SetKey struct {
	SetNumber int
	SetType   SetType
}

// HistorySession groups the set records of one prior session of an
// exercise. Runner history is ordered most-recent-first.
type HistorySession struct {
	SessionID uuid.UUID   `json:"session_id"`
	Date      time.Time   `json:"date"`
	Sets      []SetRecord `json:"sets"`
}

// WorkSets returns the work sets of the session in set-number order.
// The stored order already satisfies this; the filter just drops
// warmups and drop/failure sets.
func (h HistorySession) WorkSets() []SetRecord {
	var out []SetRecord
	for _, s := range h.Sets {
		if s.SetType == SetTypeWork {
			out = append(out, s)
		}
	}
	return out
}
