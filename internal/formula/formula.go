// Package formula holds the pure load/effort math: Epley 1RM estimation,
// RIR/RPE conversion, percent-of-1RM relationships, and plate-increment
// rounding. All functions are total over their stated domains and never
// panic.
package formula

import "math"

// DefaultIncrementKg is the rounding increment used when the lifter has no
// saved preference.
const DefaultIncrementKg = 2.5

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Estimate1RM returns the Epley one-rep-max estimate for a set.
// Zero reps estimate nothing (0); a single rep is the lift itself, with no
// extrapolation.
func Estimate1RM(weightKg float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}
	return round1(weightKg * (1 + float64(reps)/30))
}

// RIRToRPE converts reps-in-reserve to rate-of-perceived-exertion.
func RIRToRPE(rir float64) float64 { return 10 - rir }

// RPEToRIR converts rate-of-perceived-exertion to reps-in-reserve.
func RPEToRIR(rpe float64) float64 { return 10 - rpe }

// PercentFromRepsAndRIR returns the percentage of 1RM that produces
// exactly reps reps with rir reps left in reserve, per the inverse Epley
// relationship. Rounded to one decimal.
func PercentFromRepsAndRIR(reps int, rir float64) float64 {
	return round1(100 / (1 + (float64(reps)+rir)/30))
}

// WeightFromPercent converts a percentage of a 1RM into a loadable weight,
// rounded to the nearest multiple of incrementKg (ties round up). A
// non-positive increment falls back to the default.
func WeightFromPercent(oneRM, percent, incrementKg float64) float64 {
	if incrementKg <= 0 {
		incrementKg = DefaultIncrementKg
	}
	return math.Round(oneRM*percent/100/incrementKg) * incrementKg
}

// EstimateRIR returns the reps-in-reserve implied by lifting weightKg for
// reps against a known oneRM. The result may be negative: that signals an
// impossible reps/intensity combination for the given 1RM, and callers
// surface it as a validation warning rather than clamping.
func EstimateRIR(weightKg float64, reps int, oneRM float64) float64 {
	if weightKg <= 0 {
		return 0
	}
	return 30*(oneRM/weightKg-1) - float64(reps)
}
