package progression

import (
	"testing"
	"time"

	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
)

func ptr(v float64) *float64 { return &v }

// session builds a HistorySession of work sets at the given weight with
// the given per-set reps.
func session(daysAgo int, weight float64, reps ...int) models.HistorySession {
	h := models.HistorySession{Date: time.Now().AddDate(0, 0, -daysAgo)}
	for i, r := range reps {
		h.Sets = append(h.Sets, models.SetRecord{
			SetNumber:    i + 1,
			SetType:      models.SetTypeWork,
			WeightKg:     weight,
			Reps:         r,
			Estimated1RM: formula.Estimate1RM(weight, r),
		})
	}
	return h
}

func templateSets(n, repsMin, repsMax int, rir *float64) []models.TemplateSetSpec {
	var sets []models.TemplateSetSpec
	for i := 0; i < n; i++ {
		sets = append(sets, models.TemplateSetSpec{
			SetNumber: i + 1,
			RepsMin:   repsMin,
			RepsMax:   repsMax,
			TargetRIR: rir,
		})
	}
	return sets
}

var testSettings = models.DefaultSettings()

// TestResolve_Static verifies that static mode repeats the last work set
// of the most recent session.
func TestResolve_Static(t *testing.T) {
	r := NewResolver(testSettings)
	history := []models.HistorySession{
		session(3, 102.5, 8, 8, 7),
		session(10, 100, 8, 8, 8),
	}
	got := r.Resolve(models.ProgressionSpec{Mode: models.ProgressionStatic}, nil, history)
	if got == nil {
		t.Fatal("expected a target")
	}
	if got.WeightKg != 102.5 || got.Reps != 7 {
		t.Errorf("static target = %v kg x %d, want 102.5 x 7", got.WeightKg, got.Reps)
	}
}

// TestResolve_NoHistory verifies that every mode degrades to nil when the
// lifter has never done the exercise.
func TestResolve_NoHistory(t *testing.T) {
	r := NewResolver(testSettings)
	specs := []models.ProgressionSpec{
		{Mode: models.ProgressionStatic},
		{Mode: models.ProgressionAutoDouble, Double: &models.DoubleConfig{IncrementKg: 2.5, Condition: models.ConditionAllSetsMaxReps}},
		{Mode: models.ProgressionAutoLinear, Linear: &models.LinearConfig{IncrementKg: 2.5}},
	}
	for _, spec := range specs {
		if got := r.Resolve(spec, templateSets(3, 6, 8, ptr(2)), nil); got != nil {
			t.Errorf("mode %s with no history: got %+v, want nil", spec.Mode, got)
		}
	}
}

// TestResolve_AutoDouble_AllSetsMet verifies the weight increase and rep
// reset once every work set reaches the top of the range.
func TestResolve_AutoDouble_AllSetsMet(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode:   models.ProgressionAutoDouble,
		Double: &models.DoubleConfig{IncrementKg: 2.5, Condition: models.ConditionAllSetsMaxReps},
	}
	history := []models.HistorySession{session(4, 100, 8, 8, 8)}
	got := r.Resolve(spec, templateSets(3, 6, 8, ptr(2)), history)
	if got == nil {
		t.Fatal("expected a target")
	}
	if got.WeightKg != 102.5 {
		t.Errorf("target weight = %v, want 102.5", got.WeightKg)
	}
	if got.Reps != 6 {
		t.Errorf("target reps = %d, want reset to range minimum 6", got.Reps)
	}
	if got.Instruction == nil {
		t.Error("expected an instruction explaining the increase")
	}
}

// TestResolve_AutoDouble_SetBelowMax verifies the hold when any work set
// misses the top of the range.
func TestResolve_AutoDouble_SetBelowMax(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode:   models.ProgressionAutoDouble,
		Double: &models.DoubleConfig{IncrementKg: 2.5, Condition: models.ConditionAllSetsMaxReps},
	}
	history := []models.HistorySession{session(4, 100, 8, 8, 7)}
	got := r.Resolve(spec, templateSets(3, 6, 8, ptr(2)), history)
	if got == nil {
		t.Fatal("expected a target")
	}
	if got.WeightKg != 100 {
		t.Errorf("target weight = %v, want unchanged 100", got.WeightKg)
	}
}

// TestResolve_AutoDouble_FirstSetCondition verifies that only the first
// work set matters under first_set_max_reps.
func TestResolve_AutoDouble_FirstSetCondition(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode:   models.ProgressionAutoDouble,
		Double: &models.DoubleConfig{IncrementKg: 5, Condition: models.ConditionFirstSetMaxReps},
	}
	history := []models.HistorySession{session(4, 100, 8, 6, 5)}
	got := r.Resolve(spec, templateSets(3, 6, 8, nil), history)
	if got == nil {
		t.Fatal("expected a target")
	}
	if got.WeightKg != 105 {
		t.Errorf("target weight = %v, want 105", got.WeightKg)
	}
}

// TestResolve_AutoLinear verifies the effort-gated increment: increase
// when the last logged RIR is at or under the target, hold otherwise.
func TestResolve_AutoLinear(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode:   models.ProgressionAutoLinear,
		Linear: &models.LinearConfig{IncrementKg: 2.5},
	}
	sets := templateSets(3, 5, 5, ptr(2))

	met := session(4, 120, 5, 5, 5)
	for i := range met.Sets {
		met.Sets[i].RIR = ptr(2)
	}
	got := r.Resolve(spec, sets, []models.HistorySession{met})
	if got == nil || got.WeightKg != 122.5 {
		t.Fatalf("RIR at target: got %+v, want 122.5 kg", got)
	}

	over := session(4, 120, 5, 5, 5)
	for i := range over.Sets {
		over.Sets[i].RIR = ptr(3)
	}
	got = r.Resolve(spec, sets, []models.HistorySession{over})
	if got == nil || got.WeightKg != 120 {
		t.Fatalf("RIR above target: got %+v, want unchanged 120 kg", got)
	}
}

// TestResolve_AutoLinear_NoLoggedRIR verifies degradation to static when
// the lifter never logged effort.
func TestResolve_AutoLinear_NoLoggedRIR(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode:   models.ProgressionAutoLinear,
		Linear: &models.LinearConfig{IncrementKg: 2.5},
	}
	history := []models.HistorySession{session(4, 120, 5, 5, 5)}
	got := r.Resolve(spec, templateSets(3, 5, 5, ptr(2)), history)
	if got == nil || got.WeightKg != 120 {
		t.Fatalf("got %+v, want static 120 kg", got)
	}
}

// TestResolve_CustomSequence_Dynamic verifies step advancement against a
// dynamically re-estimated 1RM.
func TestResolve_CustomSequence_Dynamic(t *testing.T) {
	r := NewResolver(testSettings)
	steps := []models.SequenceStep{
		{Name: "volume", Sets: 5, Reps: 5, Percent1RM: 75},
		{Name: "intensity", Sets: 3, Reps: 3, Percent1RM: 85},
		{Name: "peak", Sets: 2, Reps: 2, Percent1RM: 92.5},
	}
	spec := models.ProgressionSpec{
		Mode: models.ProgressionCustomSequence,
		Sequence: &models.SequenceConfig{
			Steps:         steps,
			ReferenceLoad: models.ReferenceDynamic,
			OnComplete:    models.SequenceRepeat,
		},
	}

	// One completed session: next is step index 1 ("intensity").
	// Best log 100x8 estimates a 126.7 1RM; 85% of that rounds to 107.5.
	history := []models.HistorySession{session(7, 100, 8, 8, 8)}
	got := r.Resolve(spec, nil, history)
	if got == nil {
		t.Fatal("expected a target")
	}
	if got.WeightKg != 107.5 || got.Reps != 3 {
		t.Errorf("got %v kg x %d, want 107.5 x 3", got.WeightKg, got.Reps)
	}
	if got.Instruction == nil {
		t.Error("expected the step name in an instruction")
	}
}

// TestResolve_CustomSequence_Snapshot verifies the fixed reference load
// and both end-of-sequence policies.
func TestResolve_CustomSequence_Snapshot(t *testing.T) {
	r := NewResolver(testSettings)
	steps := []models.SequenceStep{
		{Name: "a", Sets: 3, Reps: 5, Percent1RM: 70},
		{Name: "b", Sets: 3, Reps: 3, Percent1RM: 80},
	}
	history := []models.HistorySession{
		session(28, 90, 5, 5, 5),
		session(21, 92.5, 5, 5, 5),
		session(14, 95, 3, 3, 3),
		session(7, 100, 3, 3, 3),
	}

	repeat := models.ProgressionSpec{
		Mode: models.ProgressionCustomSequence,
		Sequence: &models.SequenceConfig{
			Steps:         steps,
			ReferenceLoad: models.ReferenceSnapshot,
			SnapshotOneRM: 140,
			OnComplete:    models.SequenceRepeat,
		},
	}
	// Four completed sessions wrap back to step index 0.
	got := r.Resolve(repeat, nil, history)
	if got == nil || got.WeightKg != 97.5 || got.Reps != 5 {
		t.Fatalf("repeat policy: got %+v, want 97.5 kg x 5 (70%% of 140)", got)
	}

	hold := repeat
	hold.Sequence = &models.SequenceConfig{
		Steps:         steps,
		ReferenceLoad: models.ReferenceSnapshot,
		SnapshotOneRM: 140,
		OnComplete:    models.SequenceHold,
	}
	got = r.Resolve(hold, nil, history)
	if got == nil || got.WeightKg != 112.5 || got.Reps != 3 {
		t.Fatalf("hold policy: got %+v, want last step at 112.5 kg x 3", got)
	}
}

// TestResolve_CustomSequence_NoReference verifies degradation to static
// when a dynamic sequence has no history to estimate from.
func TestResolve_CustomSequence_NoReference(t *testing.T) {
	r := NewResolver(testSettings)
	spec := models.ProgressionSpec{
		Mode: models.ProgressionCustomSequence,
		Sequence: &models.SequenceConfig{
			Steps:         []models.SequenceStep{{Name: "a", Sets: 3, Reps: 5, Percent1RM: 70}},
			ReferenceLoad: models.ReferenceDynamic,
		},
	}
	if got := r.Resolve(spec, nil, nil); got != nil {
		t.Errorf("got %+v, want nil with no history and no reference", got)
	}
}
