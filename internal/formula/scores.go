package formula

import (
	"math"

	"github.com/meltforce/liftlog/internal/models"
)

// Bodyweight-normalized competition scores. Each formula multiplies the
// lifted total by a sex-specific coefficient over bodyweight. All return 0
// when bodyweight or total is unavailable (<= 0) — never an error.

// DOTS polynomial coefficients (denominator a + b·x + c·x² + d·x³ + e·x⁴,
// score = total · 500/denominator).
var (
	dotsMale   = [5]float64{-307.75076, 24.0900756, -0.1918759221, 0.0007391293, -0.000001093}
	dotsFemale = [5]float64{-57.96288, 13.6175032, -0.1126655495, 0.0005158568, -0.0000010706}
)

// Wilks (original) coefficients, fifth-degree polynomial denominator.
var (
	wilksMale   = [6]float64{-216.0475144, 16.2606339, -0.002388645, -0.00113732, 7.01863e-06, -1.291e-08}
	wilksFemale = [6]float64{594.31747775582, -27.23842536447, 0.82112226871, -0.00930733913, 4.731582e-05, -9.054e-08}
)

// IPF GL (goodlift) coefficients for raw three-lift totals:
// score = total · 100 / (A − B·e^(−C·bw)).
var (
	iptGLMale   = [3]float64{1199.72839, 1025.18162, 0.00921}
	iptGLFemale = [3]float64{610.32796, 1045.59282, 0.03048}
)

// CalculateDOTS returns the DOTS score for a total at a bodyweight.
func CalculateDOTS(totalKg, bodyweightKg float64, sex models.Sex) float64 {
	if totalKg <= 0 || bodyweightKg <= 0 {
		return 0
	}
	c := dotsMale
	if sex == models.SexFemale {
		c = dotsFemale
	}
	denom := polyval(c[:], bodyweightKg)
	if denom == 0 {
		return 0
	}
	return round1(totalKg * 500 / denom)
}

// CalculateWilks returns the (original) Wilks score.
func CalculateWilks(totalKg, bodyweightKg float64, sex models.Sex) float64 {
	if totalKg <= 0 || bodyweightKg <= 0 {
		return 0
	}
	c := wilksMale
	if sex == models.SexFemale {
		c = wilksFemale
	}
	denom := polyval(c[:], bodyweightKg)
	if denom == 0 {
		return 0
	}
	return round1(totalKg * 500 / denom)
}

// CalculateIPFGL returns the IPF GL points for a raw total.
func CalculateIPFGL(totalKg, bodyweightKg float64, sex models.Sex) float64 {
	if totalKg <= 0 || bodyweightKg <= 0 {
		return 0
	}
	c := iptGLMale
	if sex == models.SexFemale {
		c = iptGLFemale
	}
	denom := c[0] - c[1]*math.Exp(-c[2]*bodyweightKg)
	if denom <= 0 {
		return 0
	}
	return round1(totalKg * 100 / denom)
}

// polyval evaluates c[0] + c[1]·x + c[2]·x² + ...
func polyval(c []float64, x float64) float64 {
	sum := 0.0
	pow := 1.0
	for _, coeff := range c {
		sum += coeff * pow
		pow *= x
	}
	return sum
}
