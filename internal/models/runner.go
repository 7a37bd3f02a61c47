package models

import "github.com/google/uuid"

// PlannedWarmup is one generated, not-yet-logged warmup set.
type PlannedWarmup struct {
	SetNumber int     `json:"set_number"`
	WeightKg  float64 `json:"weight_kg"`
	Reps      int     `json:"reps"`
}

// ProgressionTarget is the resolved next-session prescription for an
// exercise. Instruction carries the human-readable rationale, nil when the
// resolver has nothing to say.
type ProgressionTarget struct {
	WeightKg    float64  `json:"weight_kg"`
	Reps        int      `json:"reps"`
	RIR         *float64 `json:"rir,omitempty"`
	Instruction *string  `json:"instruction,omitempty"`
}

// RunnerExerciseState is an exercise's live context inside an in-progress
// session. It is created at session start (or when an exercise is added
// mid-session), mutated in place only by the session runner, and discarded
// when the session finishes; only its Logs survive as persisted records.
type RunnerExerciseState struct {
	ExerciseID uuid.UUID `json:"exercise_id"`
	Name       string    `json:"name"`

	// SetsData is the ordered per-set plan from the template. Empty for
	// ad-hoc exercises added mid-session.
	SetsData []TemplateSetSpec `json:"sets_data"`

	// Logs holds this session's records, at most one per (SetNumber,
	// SetType) key.
	Logs []SetRecord `json:"logs"`

	// HistoryLogs holds prior sessions most-recent-first. Read-only.
	HistoryLogs []HistorySession `json:"history_logs"`

	// TargetSets is the work-set count for this session. Mutable: extra
	// sets raise it, removing a planned set or a volume readiness
	// adjustment lowers it (floor 1 for readiness, 0 for removal).
	TargetSets int `json:"target_sets"`

	PlannedWarmups []PlannedWarmup `json:"planned_warmups,omitempty"`

	Progression ProgressionSpec `json:"progression"`

	// Target caches the resolver output computed at session start.
	Target *ProgressionTarget `json:"target,omitempty"`

	// OneRMOverride is the lifter-entered 1RM, nil when none is stored.
	OneRMOverride *float64 `json:"one_rm_override,omitempty"`
}

// LoggedWorkSets counts this session's logged work sets.
func (e *RunnerExerciseState) LoggedWorkSets() int {
	n := 0
	for _, s := range e.Logs {
		if s.SetType == SetTypeWork {
			n++
		}
	}
	return n
}

// Complete reports whether the exercise has met its work-set target.
func (e *RunnerExerciseState) Complete() bool {
	return e.LoggedWorkSets() >= e.TargetSets
}

// LoggedSet returns the live record for a key, if any.
func (e *RunnerExerciseState) LoggedSet(key SetKey) (SetRecord, bool) {
	for _, s := range e.Logs {
		if s.Key() == key {
			return s, true
		}
	}
	return SetRecord{}, false
}

// BestHistorical1RM returns the highest estimated 1RM across all
// historical work sets, 0 when there is no history.
func (e *RunnerExerciseState) BestHistorical1RM() float64 {
	best := 0.0
	for _, h := range e.HistoryLogs {
		for _, s := range h.WorkSets() {
			if s.Estimated1RM > best {
				best = s.Estimated1RM
			}
		}
	}
	return best
}

// Best1RM returns the greater of the lifter-entered override and the best
// historical estimate.
func (e *RunnerExerciseState) Best1RM() float64 {
	best := e.BestHistorical1RM()
	if e.OneRMOverride != nil && *e.OneRMOverride > best {
		best = *e.OneRMOverride
	}
	return best
}
