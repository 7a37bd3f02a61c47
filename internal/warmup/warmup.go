// Package warmup derives a short ascending warmup ramp from a single
// work-set reference weight.
package warmup

import (
	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
)

// MinPracticalLoadKg is the empty-bar threshold. A reference at or below
// it gets no ramp; the lifter just starts working.
const MinPracticalLoadKg = 20

// rampStep is one rung of the standard ramp: a fraction of the reference
// weight and the reps performed there.
type rampStep struct {
	fraction float64
	reps     int
}

// Heavier rungs take fewer reps so the ramp primes without fatiguing.
var standardRamp = []rampStep{
	{0.40, 8},
	{0.60, 5},
	{0.80, 3},
}

// GenerateRamp builds warmup sets for a work-set reference weight, rounded
// to the lifter's plate increment. Weights are non-decreasing and the last
// entry stays strictly below the reference. An empty slice is returned for
// references at or below MinPracticalLoadKg.
func GenerateRamp(referenceWeightKg, incrementKg float64) []models.PlannedWarmup {
	if referenceWeightKg <= MinPracticalLoadKg {
		return nil
	}
	if incrementKg <= 0 {
		incrementKg = formula.DefaultIncrementKg
	}

	var ramp []models.PlannedWarmup
	prev := 0.0
	for _, step := range standardRamp {
		w := formula.WeightFromPercent(referenceWeightKg, step.fraction*100, incrementKg)
		// Rounding can push a rung to or past the work weight; pull it
		// back one increment.
		for w >= referenceWeightKg && w > 0 {
			w -= incrementKg
		}
		if w <= 0 || w < prev {
			continue
		}
		prev = w
		ramp = append(ramp, models.PlannedWarmup{
			SetNumber: len(ramp) + 1,
			WeightKg:  w,
			Reps:      step.reps,
		})
	}
	return ramp
}
