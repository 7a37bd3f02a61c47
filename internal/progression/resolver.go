// Package progression resolves the next work-set target for an exercise
// from its history, template, and per-exercise progression rule.
package progression

import (
	"fmt"

	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
)

// Resolver computes next-session targets. It is evaluated once per
// exercise per session; all inputs are read-only.
type Resolver struct {
	settings models.ProgressionSettings
}

// NewResolver returns a resolver using the lifter's settings.
func NewResolver(settings models.ProgressionSettings) *Resolver {
	if settings.RoundingIncrementKg <= 0 {
		settings.RoundingIncrementKg = formula.DefaultIncrementKg
	}
	return &Resolver{settings: settings}
}

// Resolve returns the target for the next session, or nil when nothing can
// be derived (no usable history and no reference load). Unresolvable mode
// configurations degrade to static behavior rather than failing.
func (r *Resolver) Resolve(spec models.ProgressionSpec, sets []models.TemplateSetSpec, history []models.HistorySession) *models.ProgressionTarget {
	switch spec.Mode {
	case models.ProgressionAutoDouble:
		if spec.Double != nil {
			return r.resolveDouble(*spec.Double, sets, history)
		}
	case models.ProgressionAutoLinear:
		if spec.Linear != nil {
			return r.resolveLinear(*spec.Linear, sets, history)
		}
	case models.ProgressionCustomSequence:
		if spec.Sequence != nil && len(spec.Sequence.Steps) > 0 {
			if t := r.resolveSequence(*spec.Sequence, history); t != nil {
				return t
			}
		}
	}
	return r.resolveStatic(history)
}

// resolveStatic repeats the last work set of the most recent session.
func (r *Resolver) resolveStatic(history []models.HistorySession) *models.ProgressionTarget {
	last, ok := lastCompletedSession(history)
	if !ok {
		return nil
	}
	work := last.WorkSets()
	s := work[len(work)-1]
	return &models.ProgressionTarget{
		WeightKg: s.WeightKg,
		Reps:     s.Reps,
		RIR:      s.RIR,
	}
}

func (r *Resolver) resolveDouble(cfg models.DoubleConfig, sets []models.TemplateSetSpec, history []models.HistorySession) *models.ProgressionTarget {
	if len(sets) == 0 {
		return r.resolveStatic(history)
	}
	last, ok := lastCompletedSession(history)
	if !ok {
		return nil
	}
	work := last.WorkSets()

	met := false
	switch cfg.Condition {
	case models.ConditionFirstSetMaxReps:
		met = work[0].Reps >= templateMaxReps(sets, work[0].SetNumber)
	default: // all_sets_max_reps
		met = true
		for _, s := range work {
			if s.Reps < templateMaxReps(sets, s.SetNumber) {
				met = false
				break
			}
		}
	}

	if !met {
		return r.resolveStatic(history)
	}

	target := &models.ProgressionTarget{
		WeightKg: topWorkWeight(work) + cfg.IncrementKg,
		Reps:     templateMinReps(sets),
	}
	if len(sets) > 0 {
		target.RIR = sets[0].TargetRIR
	}
	instr := fmt.Sprintf("top of rep range reached — add %.1f kg, reps reset to %d", cfg.IncrementKg, target.Reps)
	target.Instruction = &instr
	return target
}

func (r *Resolver) resolveLinear(cfg models.LinearConfig, sets []models.TemplateSetSpec, history []models.HistorySession) *models.ProgressionTarget {
	last, ok := lastCompletedSession(history)
	if !ok {
		return nil
	}
	work := last.WorkSets()
	final := work[len(work)-1]

	var targetRIR *float64
	if len(sets) > 0 {
		targetRIR = sets[0].TargetRIR
	}
	if final.RIR == nil || targetRIR == nil || *final.RIR > *targetRIR {
		return r.resolveStatic(history)
	}

	target := &models.ProgressionTarget{
		WeightKg: topWorkWeight(work) + cfg.IncrementKg,
		Reps:     final.Reps,
		RIR:      targetRIR,
	}
	instr := fmt.Sprintf("effort target met (RIR %.1f) — add %.1f kg", *final.RIR, cfg.IncrementKg)
	target.Instruction = &instr
	return target
}

func (r *Resolver) resolveSequence(cfg models.SequenceConfig, history []models.HistorySession) *models.ProgressionTarget {
	oneRM := cfg.SnapshotOneRM
	if cfg.ReferenceLoad == models.ReferenceDynamic {
		oneRM = best1RM(history)
	}
	if oneRM <= 0 {
		return nil
	}

	idx := completedSince(history, cfg)
	if idx >= len(cfg.Steps) {
		if cfg.OnComplete == models.SequenceRepeat {
			idx %= len(cfg.Steps)
		} else {
			idx = len(cfg.Steps) - 1
		}
	}
	step := cfg.Steps[idx]

	target := &models.ProgressionTarget{
		WeightKg: formula.WeightFromPercent(oneRM, step.Percent1RM, r.settings.RoundingIncrementKg),
		Reps:     step.Reps,
		RIR:      step.RIR,
	}
	instr := fmt.Sprintf("%s: %d x %d @ %.0f%% of %.1f kg", step.Name, step.Sets, step.Reps, step.Percent1RM, oneRM)
	target.Instruction = &instr
	return target
}

// lastCompletedSession returns the most recent history entry that logged
// at least one work set.
func lastCompletedSession(history []models.HistorySession) (models.HistorySession, bool) {
	for _, h := range history {
		if len(h.WorkSets()) > 0 {
			return h, true
		}
	}
	return models.HistorySession{}, false
}

// completedSince counts completed sessions since the sequence started.
// With no recorded start date, every history entry counts.
func completedSince(history []models.HistorySession, cfg models.SequenceConfig) int {
	n := 0
	for _, h := range history {
		if len(h.WorkSets()) == 0 {
			continue
		}
		if !cfg.StartedAt.IsZero() && h.Date.Before(cfg.StartedAt) {
			continue
		}
		n++
	}
	return n
}

// topWorkWeight returns the heaviest work-set weight of a session.
func topWorkWeight(work []models.SetRecord) float64 {
	top := 0.0
	for _, s := range work {
		if s.WeightKg > top {
			top = s.WeightKg
		}
	}
	return top
}

// best1RM returns the highest estimated 1RM across all historical work
// sets.
func best1RM(history []models.HistorySession) float64 {
	best := 0.0
	for _, h := range history {
		for _, s := range h.WorkSets() {
			if s.Estimated1RM > best {
				best = s.Estimated1RM
			}
		}
	}
	return best
}

// templateMaxReps returns the max-rep bound for a set number, falling back
// to the first template set when numbers do not line up.
func templateMaxReps(sets []models.TemplateSetSpec, setNumber int) int {
	for _, t := range sets {
		if t.SetNumber == setNumber {
			return t.RepsMax
		}
	}
	if len(sets) > 0 {
		return sets[0].RepsMax
	}
	return 0
}

// templateMinReps returns the rep-range minimum of the first template set.
func templateMinReps(sets []models.TemplateSetSpec) int {
	if len(sets) > 0 {
		return sets[0].RepsMin
	}
	return 0
}
