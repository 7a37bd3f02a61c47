// Package suggest computes the prefilled weight/reps/effort for a
// not-yet-logged set. It only ever returns a suggestion; logging the set
// is a separate, explicit runner operation.
package suggest

import (
	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
)

// Source records which rule produced the suggested weight, for display and
// debugging.
type Source string

const (
	SourceAbsolute    Source = "absolute"
	SourcePercent     Source = "percent_1rm"
	SourceBackoff     Source = "backoff"
	SourceProgression Source = "progression"
	SourceHistory     Source = "history"
	SourceNone        Source = "none"
)

// Suggestion is a prefill for one work-set slot.
type Suggestion struct {
	WeightKg float64  `json:"weight_kg"`
	Reps     int      `json:"reps"`
	RIR      *float64 `json:"rir,omitempty"`
	Source   Source   `json:"source"`
	// Warning carries a non-fatal validation note, e.g. an impossible
	// reps/intensity combination for the known 1RM.
	Warning string `json:"warning,omitempty"`
}

// Input carries everything the aggregator needs for one slot. The
// aggregator reads it and mutates nothing.
type Input struct {
	Exercise *models.RunnerExerciseState
	// SetNumber is the 1-based work-set slot being prefilled.
	SetNumber int
	// IntensityMultiplier scales the resolved weight before rounding.
	// 1.0 outside a readiness-reduced session.
	IntensityMultiplier float64
	Settings            models.ProgressionSettings
}

// ForSet resolves the prefill for a work-set slot in strict precedence
// order: template absolute weight, template %1RM, back-off from the
// previous logged set, progression target, then the matching set of the
// previous session.
func ForSet(in Input) Suggestion {
	ex := in.Exercise
	inc := in.Settings.RoundingIncrementKg
	if inc <= 0 {
		inc = formula.DefaultIncrementKg
	}
	mult := in.IntensityMultiplier
	if mult <= 0 {
		mult = 1.0
	}

	spec := templateSetFor(ex, in.SetNumber)
	s := Suggestion{Source: SourceNone}
	if spec != nil {
		s.Reps = spec.RepsMin
		s.RIR = spec.TargetRIR
	}

	if spec != nil && spec.AbsoluteWeightKg != nil {
		s.WeightKg = *spec.AbsoluteWeightKg
		s.Source = SourceAbsolute
	}
	if s.Source == SourceNone && spec != nil && spec.Percentage != nil {
		if oneRM := ex.Best1RM(); oneRM > 0 {
			s.WeightKg = formula.WeightFromPercent(oneRM, *spec.Percentage, inc)
			s.Source = SourcePercent
		}
	}
	if s.Source == SourceNone && spec != nil && spec.IsBackoff && spec.BackoffPercent != nil {
		if prev, ok := previousLoggedWork(ex, in.SetNumber); ok {
			s.WeightKg = prev.WeightKg * (1 - *spec.BackoffPercent/100)
			s.Source = SourceBackoff
		}
	}
	if s.Source == SourceNone {
		if t := ex.Target; t != nil {
			s.WeightKg = t.WeightKg
			s.Source = SourceProgression
			if s.Reps == 0 {
				s.Reps = t.Reps
			}
			if s.RIR == nil {
				s.RIR = t.RIR
			}
		} else if prev, ok := historicalSet(ex, in.SetNumber); ok {
			s.WeightKg = prev.WeightKg
			s.Source = SourceHistory
			if s.Reps == 0 {
				s.Reps = prev.Reps
			}
			if s.RIR == nil {
				s.RIR = prev.RIR
			}
		}
	}

	if s.Source == SourceNone {
		return s
	}

	if mult != 1.0 {
		s.WeightKg *= mult
	}
	if mult != 1.0 || s.Source == SourceBackoff {
		s.WeightKg = formula.WeightFromPercent(s.WeightKg, 100, inc)
	}

	// Sanity-check the combination against the best-known 1RM and surface
	// an impossible prescription as a warning, never a failure.
	if oneRM := ex.Best1RM(); oneRM > 0 && s.WeightKg > 0 && s.Reps > 0 {
		if rir := formula.EstimateRIR(s.WeightKg, s.Reps, oneRM); rir < 0 {
			s.Warning = "suggested weight and reps exceed the estimated 1RM"
		}
	}
	return s
}

// templateSetFor returns the template plan for a work-set number, nil for
// ad-hoc slots beyond the plan.
func templateSetFor(ex *models.RunnerExerciseState, setNumber int) *models.TemplateSetSpec {
	for i := range ex.SetsData {
		if ex.SetsData[i].SetNumber == setNumber {
			return &ex.SetsData[i]
		}
	}
	return nil
}

// previousLoggedWork returns this session's logged work set immediately
// before setNumber.
func previousLoggedWork(ex *models.RunnerExerciseState, setNumber int) (models.SetRecord, bool) {
	var best models.SetRecord
	found := false
	for _, s := range ex.Logs {
		if s.SetType != models.SetTypeWork || s.SetNumber >= setNumber {
			continue
		}
		if !found || s.SetNumber > best.SetNumber {
			best = s
			found = true
		}
	}
	return best, found
}

// historicalSet returns the same-numbered work set from the most recent
// prior session.
func historicalSet(ex *models.RunnerExerciseState, setNumber int) (models.SetRecord, bool) {
	for _, h := range ex.HistoryLogs {
		for _, s := range h.WorkSets() {
			if s.SetNumber == setNumber {
				return s, true
			}
		}
		if len(h.WorkSets()) > 0 {
			break
		}
	}
	return models.SetRecord{}, false
}
