package models

import "time"

// ProgressionMode selects the rule used to derive the next work-set target
// for an exercise. The modes form a closed set; ProgressionSpec is a tagged
// union dispatched by a single switch in the resolver.
type ProgressionMode string

const (
	ProgressionStatic         ProgressionMode = "static"
	ProgressionAutoDouble     ProgressionMode = "auto_double"
	ProgressionAutoLinear     ProgressionMode = "auto_linear"
	ProgressionCustomSequence ProgressionMode = "custom_sequence"
)

// DoubleCondition is the trigger for an auto_double weight increase.
type DoubleCondition string

const (
	ConditionAllSetsMaxReps  DoubleCondition = "all_sets_max_reps"
	ConditionFirstSetMaxReps DoubleCondition = "first_set_max_reps"
)

// ReferenceLoadType selects how custom_sequence derives its reference 1RM.
type ReferenceLoadType string

const (
	// ReferenceDynamic re-estimates the 1RM from the best recent log each
	// time a step is resolved.
	ReferenceDynamic ReferenceLoadType = "dynamic"
	// ReferenceSnapshot uses the 1RM recorded once when the sequence
	// started.
	ReferenceSnapshot ReferenceLoadType = "static_snapshot"
)

// SequenceEndPolicy says what happens after the last step of a custom
// sequence completes.
type SequenceEndPolicy string

const (
	SequenceRepeat SequenceEndPolicy = "repeat"
	SequenceHold   SequenceEndPolicy = "hold"
)

// SequenceStep is one step of a custom_sequence progression.
type SequenceStep struct {
	Name       string   `json:"name"`
	Sets       int      `json:"sets"`
	Reps       int      `json:"reps"`
	Percent1RM float64  `json:"percent_1rm"`
	RIR        *float64 `json:"rir,omitempty"`
}

// DoubleConfig configures auto_double progression.
type DoubleConfig struct {
	IncrementKg float64         `json:"increment_kg"`
	Condition   DoubleCondition `json:"condition"`
}

// LinearConfig configures auto_linear progression.
type LinearConfig struct {
	IncrementKg float64 `json:"increment_kg"`
}

// SequenceConfig configures custom_sequence progression.
type SequenceConfig struct {
	Steps         []SequenceStep    `json:"steps"`
	ReferenceLoad ReferenceLoadType `json:"reference_load"`
	OnComplete    SequenceEndPolicy `json:"on_complete"`
	// SnapshotOneRM is the reference recorded when the sequence started;
	// only meaningful for ReferenceSnapshot.
	SnapshotOneRM float64 `json:"snapshot_1rm,omitempty"`
	// StartedAt marks the first session of the sequence so the current
	// step can be derived from history without resolver-side state.
	StartedAt time.Time `json:"started_at,omitempty"`
}

// ProgressionSpec is the per-exercise progression rule. Exactly the config
// matching Mode is consulted; the others are ignored.
type ProgressionSpec struct {
	Mode     ProgressionMode `json:"mode"`
	Double   *DoubleConfig   `json:"double,omitempty"`
	Linear   *LinearConfig   `json:"linear,omitempty"`
	Sequence *SequenceConfig `json:"sequence,omitempty"`
}

// EffortNotation is how the lifter prefers effort displayed.
type EffortNotation string

const (
	NotationRIR EffortNotation = "rir"
	NotationRPE EffortNotation = "rpe"
)

// OneRMUpdatePolicy controls what happens to detected PRs at session end.
type OneRMUpdatePolicy string

const (
	OneRMUpdateManual  OneRMUpdatePolicy = "manual"
	OneRMUpdateConfirm OneRMUpdatePolicy = "confirm"
	OneRMUpdateAuto    OneRMUpdatePolicy = "auto"
)

// Sex selects the coefficient set for bodyweight-normalized scores.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// ProgressionSettings are the lifter's global prescription preferences.
type ProgressionSettings struct {
	RoundingIncrementKg float64           `json:"rounding_increment_kg"`
	MaxPlateKg          float64           `json:"max_plate_kg"`
	Notation            EffortNotation    `json:"notation"`
	AggressivenessRate  float64           `json:"aggressiveness_rate"`
	DeloadRate          float64           `json:"deload_rate"`
	OneRMUpdate         OneRMUpdatePolicy `json:"one_rm_update"`
	Sex                 Sex               `json:"sex"`
}

// DefaultSettings returns the settings used when the lifter has never
// saved any.
func DefaultSettings() ProgressionSettings {
	return ProgressionSettings{
		RoundingIncrementKg: 2.5,
		MaxPlateKg:          25,
		Notation:            NotationRIR,
		AggressivenessRate:  1.0,
		DeloadRate:          0.9,
		OneRMUpdate:         OneRMUpdateConfirm,
		Sex:                 SexMale,
	}
}
