package suggest

import (
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/models"
)

func ptr(v float64) *float64 { return &v }

func baseExercise() *models.RunnerExerciseState {
	return &models.RunnerExerciseState{
		Name:       "Bench Press",
		TargetSets: 3,
		SetsData: []models.TemplateSetSpec{
			{SetNumber: 1, RepsMin: 6, RepsMax: 8, TargetRIR: ptr(2)},
			{SetNumber: 2, RepsMin: 6, RepsMax: 8, TargetRIR: ptr(2)},
			{SetNumber: 3, RepsMin: 6, RepsMax: 8, TargetRIR: ptr(2)},
		},
	}
}

func input(ex *models.RunnerExerciseState, setNumber int) Input {
	return Input{
		Exercise:            ex,
		SetNumber:           setNumber,
		IntensityMultiplier: 1.0,
		Settings:            models.DefaultSettings(),
	}
}

// TestForSet_AbsoluteWeightWins verifies that an explicit template weight
// beats every other source.
func TestForSet_AbsoluteWeightWins(t *testing.T) {
	ex := baseExercise()
	ex.SetsData[0].SetIntensity(models.IntensityAbsolute, 77.5)
	ex.Target = &models.ProgressionTarget{WeightKg: 100, Reps: 6}

	got := ForSet(input(ex, 1))
	if got.Source != SourceAbsolute || got.WeightKg != 77.5 {
		t.Errorf("got %+v, want absolute 77.5", got)
	}
	if got.Reps != 6 {
		t.Errorf("reps = %d, want template minimum 6", got.Reps)
	}
}

// TestForSet_PercentOf1RM verifies the %1RM path against the best-known
// 1RM (override beats history).
func TestForSet_PercentOf1RM(t *testing.T) {
	ex := baseExercise()
	ex.SetsData[0].SetIntensity(models.IntensityPercent, 80)
	ex.OneRMOverride = ptr(120)

	got := ForSet(input(ex, 1))
	// 80% of 120 = 96, rounded to 2.5 -> 95.
	if got.Source != SourcePercent || got.WeightKg != 95 {
		t.Errorf("got %+v, want percent source at 95", got)
	}
}

// TestForSet_BackoffFromPreviousSet verifies that a back-off set derives
// from the previous logged set's weight, not from the 1RM.
func TestForSet_BackoffFromPreviousSet(t *testing.T) {
	ex := baseExercise()
	ex.SetsData[2].SetIntensity(models.IntensityBackoff, 10)
	ex.OneRMOverride = ptr(200)
	ex.Logs = []models.SetRecord{
		{SetNumber: 1, SetType: models.SetTypeWork, WeightKg: 100, Reps: 8},
		{SetNumber: 2, SetType: models.SetTypeWork, WeightKg: 100, Reps: 7},
	}

	got := ForSet(input(ex, 3))
	// 100 minus 10 percent = 90, already on the 2.5 grid.
	if got.Source != SourceBackoff || got.WeightKg != 90 {
		t.Errorf("got %+v, want backoff at 90", got)
	}
}

// TestForSet_ProgressionFallback verifies that a plain template set falls
// through to the resolver target.
func TestForSet_ProgressionFallback(t *testing.T) {
	ex := baseExercise()
	ex.Target = &models.ProgressionTarget{WeightKg: 102.5, Reps: 6, RIR: ptr(2)}

	got := ForSet(input(ex, 2))
	if got.Source != SourceProgression || got.WeightKg != 102.5 {
		t.Errorf("got %+v, want progression at 102.5", got)
	}
}

// TestForSet_HistoryFallback verifies the last-resort source: the same set
// number from the previous session.
func TestForSet_HistoryFallback(t *testing.T) {
	ex := baseExercise()
	ex.HistoryLogs = []models.HistorySession{{
		Date: time.Now().AddDate(0, 0, -7),
		Sets: []models.SetRecord{
			{SetNumber: 1, SetType: models.SetTypeWork, WeightKg: 95, Reps: 8, RIR: ptr(1)},
			{SetNumber: 2, SetType: models.SetTypeWork, WeightKg: 95, Reps: 7, RIR: ptr(1)},
		},
	}}

	got := ForSet(input(ex, 2))
	if got.Source != SourceHistory || got.WeightKg != 95 {
		t.Errorf("got %+v, want history at 95", got)
	}
}

// TestForSet_NoSources verifies the empty suggestion for a brand-new
// ad-hoc exercise.
func TestForSet_NoSources(t *testing.T) {
	ex := &models.RunnerExerciseState{Name: "Cable Fly", TargetSets: 3}
	got := ForSet(input(ex, 1))
	if got.Source != SourceNone || got.WeightKg != 0 {
		t.Errorf("got %+v, want empty suggestion", got)
	}
}

// TestForSet_IntensityMultiplier verifies that a readiness reduction
// scales the weight before rounding.
func TestForSet_IntensityMultiplier(t *testing.T) {
	ex := baseExercise()
	ex.Target = &models.ProgressionTarget{WeightKg: 100, Reps: 6}

	in := input(ex, 1)
	in.IntensityMultiplier = 0.9
	got := ForSet(in)
	if got.WeightKg != 90 {
		t.Errorf("weight = %v, want 90 after 0.9 multiplier", got.WeightKg)
	}

	in.IntensityMultiplier = 0.9
	ex.Target.WeightKg = 102.5
	got = ForSet(in)
	// 102.5 * 0.9 = 92.25, rounds to 92.5.
	if got.WeightKg != 92.5 {
		t.Errorf("weight = %v, want 92.5 after multiplier and rounding", got.WeightKg)
	}
}

// TestForSet_ImpossibleComboWarning verifies the negative-RIR validation
// warning surfaces without clamping the suggestion.
func TestForSet_ImpossibleComboWarning(t *testing.T) {
	ex := baseExercise()
	ex.SetsData[0].RepsMin = 10
	ex.SetsData[0].SetIntensity(models.IntensityAbsolute, 95)
	ex.OneRMOverride = ptr(100)

	got := ForSet(input(ex, 1))
	if got.WeightKg != 95 {
		t.Errorf("weight = %v, want unclamped 95", got.WeightKg)
	}
	if got.Warning == "" {
		t.Error("expected a validation warning for 95x10 against a 100 kg 1RM")
	}
}

// TestForSet_DoesNotMutate verifies the aggregator is read-only over the
// exercise state.
func TestForSet_DoesNotMutate(t *testing.T) {
	ex := baseExercise()
	ex.Target = &models.ProgressionTarget{WeightKg: 100, Reps: 6}
	before := len(ex.Logs)

	_ = ForSet(input(ex, 1))
	if len(ex.Logs) != before || ex.Target.WeightKg != 100 {
		t.Error("aggregator mutated exercise state")
	}
}
