package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// exerciseView is the rendered state of one exercise in a live session.
type exerciseView struct {
	ExerciseID uuid.UUID                 `json:"exercise_id"`
	Name       string                    `json:"name"`
	TargetSets int                       `json:"target_sets"`
	Target     *models.ProgressionTarget `json:"target,omitempty"`
	Slots      []session.Slot            `json:"slots"`
}

// sessionView is the full rendered state of a live session.
type sessionView struct {
	SessionID           uuid.UUID      `json:"session_id"`
	CurrentIndex        int            `json:"current_index"`
	IntensityMultiplier float64        `json:"intensity_multiplier"`
	Closed              bool           `json:"closed"`
	Exercises           []exerciseView `json:"exercises"`
}

// renderSession builds a sessionView. Caller holds the session mutex.
func renderSession(ls *liveSession) sessionView {
	view := sessionView{
		SessionID:           ls.runner.ID(),
		CurrentIndex:        ls.runner.CurrentIndex(),
		IntensityMultiplier: ls.runner.IntensityMultiplier(),
		Closed:              ls.runner.Closed(),
	}
	for _, ex := range ls.runner.Exercises() {
		slots, _ := ls.runner.Slots(ex.ExerciseID)
		view.Exercises = append(view.Exercises, exerciseView{
			ExerciseID: ex.ExerciseID,
			Name:       ex.Name,
			TargetSets: ex.TargetSets,
			Target:     ex.Target,
			Slots:      slots,
		})
	}
	return view
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}

	var req struct {
		TemplateID *uuid.UUID `json:"template_id"`
		Deload     bool       `json:"deload"`
		Notes      string     `json:"notes"`
	}
	// An empty body starts a blank ad-hoc session.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	settings, err := s.db.GetSettings(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	var exercises []models.TemplateExercise
	if req.TemplateID != nil {
		exercises, err = s.db.TemplateExercises(r.Context(), *req.TemplateID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	runner := session.New(storage.UserScope{DB: s.db, UserID: uid}, settings, s.log)
	if err := s.db.CreateSession(r.Context(), uid, runner.ID(), req.TemplateID, time.Now()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if err := runner.Start(r.Context(), exercises); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	runner.SetDeload(req.Deload)
	runner.SetNotes(req.Notes)

	ls := &liveSession{runner: runner, userID: uid}
	s.mu.Lock()
	s.sessions[runner.ID()] = ls
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, renderSession(ls))
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	exerciseID, err := uuid.Parse(r.URL.Query().Get("exercise_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid exercise_id"})
		return
	}
	setNumber, err := strconv.Atoi(r.URL.Query().Get("set_number"))
	if err != nil || setNumber < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "set_number must be a positive integer"})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	suggestion, err := ls.runner.Suggest(exerciseID, setNumber)
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

func (s *Server) handlePlanWarmups(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	warmups, err := ls.runner.PlanWarmups(req.ExerciseID)
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, warmups)
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		ExerciseID uuid.UUID      `json:"exercise_id"`
		SetNumber  int            `json:"set_number"`
		SetType    models.SetType `json:"set_type"`
		WeightKg   float64        `json:"weight_kg"`
		Reps       int            `json:"reps"`
		RIR        *float64       `json:"rir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SetType == "" {
		req.SetType = models.SetTypeWork
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	rec, err := ls.runner.LogSet(r.Context(), req.ExerciseID, req.SetNumber, req.SetType, req.WeightKg, req.Reps, req.RIR)
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRemoveSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
		SetNumber  int       `json:"set_number"`
		IsLogged   bool      `json:"is_logged"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.RemoveSet(r.Context(), req.ExerciseID, req.SetNumber, req.IsLogged); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleAddExtraSet(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		ExerciseID uuid.UUID `json:"exercise_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.AddExtraSet(req.ExerciseID); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		ExerciseID  uuid.UUID              `json:"exercise_id"`
		Progression models.ProgressionSpec `json:"progression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	exercise, err := s.db.GetExercise(r.Context(), req.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.AddExercise(r.Context(), *exercise, req.Progression); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleSwapExercise(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid position"})
		return
	}

	var req struct {
		ExerciseID  uuid.UUID              `json:"exercise_id"`
		Progression models.ProgressionSpec `json:"progression"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	exercise, err := s.db.GetExercise(r.Context(), req.ExerciseID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.SwapExercise(r.Context(), position, *exercise, req.Progression); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		Result session.ReadinessResult `json:"result"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.ApplyReadinessAdjustment(req.Result); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	confirm := r.URL.Query().Get("confirm") == "true"

	ls.mu.Lock()
	defer ls.mu.Unlock()
	if err := ls.runner.Advance(confirm); err != nil {
		writeRunnerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderSession(ls))
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	confirm := r.URL.Query().Get("confirm") == "true"

	ls.mu.Lock()
	result, err := ls.runner.Finish(r.Context(), confirm)
	closed := err == nil && result.Closed
	ls.mu.Unlock()
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	if closed {
		s.dropSession(ls.runner.ID())
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleResolvePRs(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	ls, ok := s.liveSessionFor(w, r, uid)
	if !ok {
		return
	}

	var req struct {
		Accepted map[uuid.UUID]bool `json:"accepted"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	ls.mu.Lock()
	err := ls.runner.ResolvePRs(r.Context(), req.Accepted)
	ls.mu.Unlock()
	if err != nil {
		writeRunnerError(w, err)
		return
	}
	s.dropSession(ls.runner.ID())
	writeJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

func (s *Server) dropSession(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// writeRunnerError maps runner sentinel errors to HTTP statuses.
func writeRunnerError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrIncompleteExercise),
		errors.Is(err, session.ErrReadinessUnavailable),
		errors.Is(err, session.ErrDuplicateExercise),
		errors.Is(err, session.ErrNoPendingPRs):
		status = http.StatusConflict
	case errors.Is(err, session.ErrExerciseNotFound),
		errors.Is(err, session.ErrSetNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrInvalidSet),
		errors.Is(err, session.ErrNoReferenceWeight):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
