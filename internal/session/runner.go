// Package session owns the live workout: per-exercise queues of planned
// warmups, logged sets, and remaining work slots. All state here is
// exclusively owned by the Runner and mutated only through its operations;
// UI layers are observers and dispatchers.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/suggest"
	"github.com/meltforce/liftlog/internal/warmup"
)

// DefaultAdHocSets is the work-set target for exercises added mid-session.
const DefaultAdHocSets = 3

// historyDepth caps how many prior sessions are pulled per exercise.
const historyDepth = 10

var (
	ErrSessionClosed        = errors.New("session is closed")
	ErrDuplicateExercise    = errors.New("exercise is already in this session")
	ErrExerciseNotFound     = errors.New("exercise is not in this session")
	ErrSetNotFound          = errors.New("no logged set with that number")
	ErrIncompleteExercise   = errors.New("exercise has unfinished work sets; confirm to continue")
	ErrInvalidSet           = errors.New("weight and reps must be non-negative")
	ErrReadinessUnavailable = errors.New("readiness can only be adjusted before any set is logged")
	ErrNoPendingPRs         = errors.New("no personal-record candidates awaiting resolution")
	ErrNoReferenceWeight    = errors.New("no reference weight available for warmup generation")
)

// Store is the persistence collaborator the runner depends on. The runner
// awaits every call before touching state; a failed call leaves state
// unchanged so the UI always matches persisted truth.
type Store interface {
	ExerciseHistory(ctx context.Context, exerciseID uuid.UUID, limit int) ([]models.HistorySession, error)
	OneRMOverride(ctx context.Context, exerciseID uuid.UUID) (*float64, error)
	SaveSet(ctx context.Context, sessionID uuid.UUID, rec models.SetRecord) error
	DeleteSet(ctx context.Context, sessionID uuid.UUID, recordID uuid.UUID) error
	UpsertOneRMOverride(ctx context.Context, exerciseID uuid.UUID, oneRM float64) error
	CloseSession(ctx context.Context, sessionID uuid.UUID, duration time.Duration, notes string) error
}

// ReadinessResult is the outcome of the pre-session readiness screen.
type ReadinessResult string

const (
	ReadinessNone      ReadinessResult = "none"
	ReadinessVolume    ReadinessResult = "volume"
	ReadinessIntensity ReadinessResult = "intensity"
)

// reducedIntensityMultiplier is applied session-wide by an intensity
// readiness adjustment.
const reducedIntensityMultiplier = 0.9

// PRCandidate is one exercise whose session-best estimated 1RM exceeds
// everything previously known.
type PRCandidate struct {
	ExerciseID   uuid.UUID `json:"exercise_id"`
	Name         string    `json:"name"`
	SessionBest  float64   `json:"session_best_1rm"`
	PreviousBest float64   `json:"previous_best_1rm"`
}

// FinishResult reports what Finish decided. When Closed is false the
// candidates await ResolvePRs before the session will close.
type FinishResult struct {
	Duration   time.Duration `json:"duration"`
	Candidates []PRCandidate `json:"candidates,omitempty"`
	Closed     bool          `json:"closed"`
}

// Runner drives one workout session from start to terminal close.
type Runner struct {
	id       uuid.UUID
	store    Store
	log      *slog.Logger
	settings models.ProgressionSettings
	resolver *progression.Resolver

	exercises []*models.RunnerExerciseState
	current   int

	intensityMultiplier float64
	isDeload            bool
	readinessApplied    bool

	startedAt time.Time
	now       func() time.Time

	closed     bool
	pendingPRs []PRCandidate
	notes      string
}

// New creates an empty runner for a new session.
func New(store Store, settings models.ProgressionSettings, log *slog.Logger) *Runner {
	if settings.RoundingIncrementKg <= 0 {
		settings.RoundingIncrementKg = formula.DefaultIncrementKg
	}
	return &Runner{
		id:                  uuid.New(),
		store:               store,
		log:                 log,
		settings:            settings,
		resolver:            progression.NewResolver(settings),
		intensityMultiplier: 1.0,
		now:                 time.Now,
	}
}

// ID returns the session identifier.
func (r *Runner) ID() uuid.UUID { return r.id }

// Start loads history and resolves progression targets for each template
// exercise, then marks the session started. Fetches run sequentially, one
// exercise at a time.
func (r *Runner) Start(ctx context.Context, exercises []models.TemplateExercise) error {
	if r.closed {
		return ErrSessionClosed
	}
	for _, te := range exercises {
		state, err := r.buildState(ctx, te.ExerciseID, te.Name, te.Sets, te.Progression)
		if err != nil {
			return fmt.Errorf("starting %s: %w", te.Name, err)
		}
		r.exercises = append(r.exercises, state)
	}
	r.startedAt = r.now()
	r.log.Info("session started", "session_id", r.id, "exercises", len(r.exercises))
	return nil
}

func (r *Runner) buildState(ctx context.Context, exerciseID uuid.UUID, name string, sets []models.TemplateSetSpec, spec models.ProgressionSpec) (*models.RunnerExerciseState, error) {
	history, err := r.store.ExerciseHistory(ctx, exerciseID, historyDepth)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	override, err := r.store.OneRMOverride(ctx, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("fetching 1RM override: %w", err)
	}

	targetSets := len(sets)
	if targetSets == 0 {
		targetSets = DefaultAdHocSets
	}
	state := &models.RunnerExerciseState{
		ExerciseID:    exerciseID,
		Name:          name,
		SetsData:      sets,
		HistoryLogs:   history,
		TargetSets:    targetSets,
		Progression:   spec,
		OneRMOverride: override,
	}
	state.Target = r.resolver.Resolve(spec, sets, history)
	return state, nil
}

// Exercises exposes the live exercise states for rendering. Callers must
// not mutate them.
func (r *Runner) Exercises() []*models.RunnerExerciseState { return r.exercises }

// CurrentIndex returns the exercise the lifter is on.
func (r *Runner) CurrentIndex() int { return r.current }

// Closed reports whether the session reached its terminal state.
func (r *Runner) Closed() bool { return r.closed }

// IntensityMultiplier returns the session-wide weight scale (1.0 unless a
// readiness adjustment reduced it).
func (r *Runner) IntensityMultiplier() float64 { return r.intensityMultiplier }

// SetDeload toggles deload state for the session. No weight reduction is
// currently derived from it; see DESIGN.md.
func (r *Runner) SetDeload(on bool) { r.isDeload = on }

// SetNotes stores free-form session notes persisted at close.
func (r *Runner) SetNotes(notes string) { r.notes = notes }

func (r *Runner) findExercise(exerciseID uuid.UUID) (*models.RunnerExerciseState, bool) {
	for _, ex := range r.exercises {
		if ex.ExerciseID == exerciseID {
			return ex, true
		}
	}
	return nil, false
}

// Suggest returns the prefill for a not-yet-logged work-set slot.
func (r *Runner) Suggest(exerciseID uuid.UUID, setNumber int) (suggest.Suggestion, error) {
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		return suggest.Suggestion{}, ErrExerciseNotFound
	}
	return suggest.ForSet(suggest.Input{
		Exercise:            ex,
		SetNumber:           setNumber,
		IntensityMultiplier: r.intensityMultiplier,
		Settings:            r.settings,
	}), nil
}

// PlanWarmups generates the warmup ramp for an exercise from its first
// work-set suggestion. Idempotent: an existing plan is returned unchanged,
// never duplicated.
func (r *Runner) PlanWarmups(exerciseID uuid.UUID) ([]models.PlannedWarmup, error) {
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		return nil, ErrExerciseNotFound
	}
	if len(ex.PlannedWarmups) > 0 {
		return ex.PlannedWarmups, nil
	}

	s := suggest.ForSet(suggest.Input{
		Exercise:            ex,
		SetNumber:           1,
		IntensityMultiplier: r.intensityMultiplier,
		Settings:            r.settings,
	})
	if s.WeightKg <= 0 {
		return nil, ErrNoReferenceWeight
	}
	ex.PlannedWarmups = warmup.GenerateRamp(s.WeightKg, r.settings.RoundingIncrementKg)
	return ex.PlannedWarmups, nil
}

// LogSet persists a set and folds it into session state. A record with the
// same (setNumber, setType) key replaces the existing one; persistence
// failure leaves state untouched.
func (r *Runner) LogSet(ctx context.Context, exerciseID uuid.UUID, setNumber int, setType models.SetType, weightKg float64, reps int, rir *float64) (models.SetRecord, error) {
	if r.closed {
		return models.SetRecord{}, ErrSessionClosed
	}
	if weightKg < 0 || reps < 0 || setNumber < 1 {
		return models.SetRecord{}, ErrInvalidSet
	}
	if _, ok := r.findExercise(exerciseID); !ok {
		return models.SetRecord{}, ErrExerciseNotFound
	}

	rec := models.SetRecord{
		ID:           uuid.New(),
		ExerciseID:   exerciseID,
		SetNumber:    setNumber,
		SetType:      setType,
		WeightKg:     weightKg,
		Reps:         reps,
		RIR:          rir,
		Estimated1RM: formula.Estimate1RM(weightKg, reps),
		LoggedAt:     r.now(),
	}

	if err := r.store.SaveSet(ctx, r.id, rec); err != nil {
		return models.SetRecord{}, fmt.Errorf("saving set: %w", err)
	}

	// The exercise may have been swapped out while the save was in
	// flight; a completion for a removed exercise is dropped, not
	// resurrected.
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		r.log.Warn("set saved for exercise no longer in session", "exercise_id", exerciseID)
		return rec, nil
	}

	key := rec.Key()
	replaced := false
	for i := range ex.Logs {
		if ex.Logs[i].Key() == key {
			ex.Logs[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		ex.Logs = append(ex.Logs, rec)
	}
	return rec, nil
}

// AddExtraSet raises the exercise's work-set target by one. Existing sets
// keep their numbers.
func (r *Runner) AddExtraSet(exerciseID uuid.UUID) error {
	if r.closed {
		return ErrSessionClosed
	}
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		return ErrExerciseNotFound
	}
	ex.TargetSets++
	return nil
}

// RemoveSet deletes a logged set (persisted record included) or drops a
// planned slot by lowering the target. The target never goes below zero.
func (r *Runner) RemoveSet(ctx context.Context, exerciseID uuid.UUID, setNumber int, isLogged bool) error {
	if r.closed {
		return ErrSessionClosed
	}
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		return ErrExerciseNotFound
	}

	if !isLogged {
		if ex.TargetSets > 0 {
			ex.TargetSets--
		}
		return nil
	}

	key := models.SetKey{SetNumber: setNumber, SetType: models.SetTypeWork}
	rec, found := ex.LoggedSet(key)
	if !found {
		return fmt.Errorf("set %d: %w", setNumber, ErrSetNotFound)
	}
	if err := r.store.DeleteSet(ctx, r.id, rec.ID); err != nil {
		return fmt.Errorf("deleting set: %w", err)
	}
	for i := range ex.Logs {
		if ex.Logs[i].Key() == key {
			ex.Logs = append(ex.Logs[:i], ex.Logs[i+1:]...)
			break
		}
	}
	return nil
}

// AddExercise appends an ad-hoc exercise. Adding one already in the
// session is rejected.
func (r *Runner) AddExercise(ctx context.Context, exercise models.Exercise, spec models.ProgressionSpec) error {
	if r.closed {
		return ErrSessionClosed
	}
	if _, exists := r.findExercise(exercise.ID); exists {
		return fmt.Errorf("%s: %w", exercise.Name, ErrDuplicateExercise)
	}
	state, err := r.buildState(ctx, exercise.ID, exercise.Name, nil, spec)
	if err != nil {
		return fmt.Errorf("adding %s: %w", exercise.Name, err)
	}
	r.exercises = append(r.exercises, state)
	return nil
}

// SwapExercise replaces the exercise at a position wholesale, discarding
// its in-progress logs and pulling fresh history for the replacement.
func (r *Runner) SwapExercise(ctx context.Context, position int, exercise models.Exercise, spec models.ProgressionSpec) error {
	if r.closed {
		return ErrSessionClosed
	}
	if position < 0 || position >= len(r.exercises) {
		return ErrExerciseNotFound
	}
	if existing, ok := r.findExercise(exercise.ID); ok && existing != r.exercises[position] {
		return fmt.Errorf("%s: %w", exercise.Name, ErrDuplicateExercise)
	}
	state, err := r.buildState(ctx, exercise.ID, exercise.Name, nil, spec)
	if err != nil {
		return fmt.Errorf("swapping in %s: %w", exercise.Name, err)
	}
	old := r.exercises[position]
	r.exercises[position] = state
	r.log.Info("exercise swapped", "session_id", r.id, "out", old.Name, "in", exercise.Name)
	return nil
}

// ApplyReadinessAdjustment applies the readiness screen outcome. This is a
// one-time, session-start-only transition: once any set is logged or an
// adjustment was applied, further calls are rejected.
func (r *Runner) ApplyReadinessAdjustment(result ReadinessResult) error {
	if r.closed {
		return ErrSessionClosed
	}
	if r.readinessApplied || r.anyLogged() {
		return ErrReadinessUnavailable
	}
	r.readinessApplied = true

	switch result {
	case ReadinessVolume:
		for _, ex := range r.exercises {
			if ex.TargetSets > 1 {
				ex.TargetSets--
			}
		}
	case ReadinessIntensity:
		r.intensityMultiplier = reducedIntensityMultiplier
	}
	return nil
}

func (r *Runner) anyLogged() bool {
	for _, ex := range r.exercises {
		if len(ex.Logs) > 0 {
			return true
		}
	}
	return false
}

// Advance moves to the next exercise. An incomplete current exercise needs
// confirm=true; the runner never skips silently.
func (r *Runner) Advance(confirm bool) error {
	if r.closed {
		return ErrSessionClosed
	}
	if r.current >= len(r.exercises)-1 {
		return ErrExerciseNotFound
	}
	if !r.exercises[r.current].Complete() && !confirm {
		return ErrIncompleteExercise
	}
	r.current++
	return nil
}

// Finish runs PR detection and closes the session according to the
// lifter's 1RM update policy. An incomplete exercise needs confirm=true.
// Under the confirm policy the session stays open until ResolvePRs.
func (r *Runner) Finish(ctx context.Context, confirm bool) (*FinishResult, error) {
	if r.closed {
		return nil, ErrSessionClosed
	}
	if !confirm {
		for _, ex := range r.exercises {
			if !ex.Complete() {
				return nil, fmt.Errorf("%s: %w", ex.Name, ErrIncompleteExercise)
			}
		}
	}

	candidates := r.detectPRs()
	result := &FinishResult{
		Duration:   r.now().Sub(r.startedAt),
		Candidates: candidates,
	}

	switch r.settings.OneRMUpdate {
	case models.OneRMUpdateConfirm:
		if len(candidates) > 0 {
			r.pendingPRs = candidates
			return result, nil
		}
	case models.OneRMUpdateAuto:
		for _, c := range candidates {
			if err := r.store.UpsertOneRMOverride(ctx, c.ExerciseID, c.SessionBest); err != nil {
				return nil, fmt.Errorf("applying PR for %s: %w", c.Name, err)
			}
		}
	}
	// Manual policy takes no action on candidates.

	if err := r.close(ctx, result.Duration); err != nil {
		return nil, err
	}
	result.Closed = true
	return result, nil
}

// ResolvePRs accepts or dismisses the candidates surfaced by Finish under
// the confirm policy, then closes the session.
func (r *Runner) ResolvePRs(ctx context.Context, accepted map[uuid.UUID]bool) error {
	if r.closed {
		return ErrSessionClosed
	}
	if len(r.pendingPRs) == 0 {
		return ErrNoPendingPRs
	}
	for _, c := range r.pendingPRs {
		if !accepted[c.ExerciseID] {
			continue
		}
		if err := r.store.UpsertOneRMOverride(ctx, c.ExerciseID, c.SessionBest); err != nil {
			return fmt.Errorf("applying PR for %s: %w", c.Name, err)
		}
	}
	r.pendingPRs = nil
	return r.close(ctx, r.now().Sub(r.startedAt))
}

// detectPRs compares each exercise's session-best estimated 1RM (work sets
// only) with the greater of the lifter override and the historical best.
func (r *Runner) detectPRs() []PRCandidate {
	var out []PRCandidate
	for _, ex := range r.exercises {
		sessionBest := 0.0
		for _, s := range ex.Logs {
			if s.SetType == models.SetTypeWork && s.Estimated1RM > sessionBest {
				sessionBest = s.Estimated1RM
			}
		}
		if sessionBest <= 0 {
			continue
		}
		prevBest := ex.Best1RM()
		if sessionBest > prevBest {
			out = append(out, PRCandidate{
				ExerciseID:   ex.ExerciseID,
				Name:         ex.Name,
				SessionBest:  sessionBest,
				PreviousBest: prevBest,
			})
		}
	}
	return out
}

// close persists session metadata and seals the runner. Terminal: no
// mutation is accepted afterwards.
func (r *Runner) close(ctx context.Context, duration time.Duration) error {
	if err := r.store.CloseSession(ctx, r.id, duration, r.notes); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	r.closed = true
	r.log.Info("session closed", "session_id", r.id, "duration", duration.String())
	return nil
}
