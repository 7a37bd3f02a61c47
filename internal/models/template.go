package models

import "github.com/google/uuid"

// TemplateSetSpec is the per-set plan of a template exercise. At most one
// of Percentage, AbsoluteWeightKg, BackoffPercent is set; assigning one
// clears the others (see SetIntensity).
type TemplateSetSpec struct {
	SetNumber        int      `json:"set_number"`
	RepsMin          int      `json:"reps_min"`
	RepsMax          int      `json:"reps_max"`
	TargetRIR        *float64 `json:"target_rir,omitempty"`
	Percentage       *float64 `json:"percentage,omitempty"`
	AbsoluteWeightKg *float64 `json:"absolute_weight_kg,omitempty"`
	IsBackoff        bool     `json:"is_backoff"`
	BackoffPercent   *float64 `json:"backoff_percent,omitempty"`
}

// IntensityKind selects which intensity field SetIntensity assigns.
type IntensityKind string

const (
	IntensityPercent  IntensityKind = "percent"
	IntensityAbsolute IntensityKind = "absolute"
	IntensityBackoff  IntensityKind = "backoff"
)

// SetIntensity assigns one intensity mode and clears the other two, keeping
// the exactly-one-active invariant.
func (t *TemplateSetSpec) SetIntensity(kind IntensityKind, value float64) {
	t.Percentage = nil
	t.AbsoluteWeightKg = nil
	t.BackoffPercent = nil
	t.IsBackoff = false

	switch kind {
	case IntensityPercent:
		t.Percentage = &value
	case IntensityAbsolute:
		t.AbsoluteWeightKg = &value
	case IntensityBackoff:
		t.IsBackoff = true
		t.BackoffPercent = &value
	}
}

// FixedReps reports whether the rep range denotes a fixed-rep set.
func (t TemplateSetSpec) FixedReps() bool {
	return t.RepsMin == t.RepsMax
}

// TemplateExercise is one exercise slot of a workout template together with
// its per-set plan and progression rule.
type TemplateExercise struct {
	ID          uuid.UUID         `json:"id"`
	TemplateID  uuid.UUID         `json:"template_id"`
	ExerciseID  uuid.UUID         `json:"exercise_id"`
	Name        string            `json:"name"`
	Position    int               `json:"position"`
	Sets        []TemplateSetSpec `json:"sets"`
	Progression ProgressionSpec   `json:"progression"`
}

// Exercise is a catalog entry.
type Exercise struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Equipment string    `json:"equipment,omitempty"`
	BodyPart  string    `json:"body_part,omitempty"`
}
