package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	settings, err := s.db.GetSettings(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	var settings models.ProgressionSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := s.db.SaveSettings(r.Context(), uid, settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleLogBodyweight(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	var req struct {
		WeightKg   float64    `json:"weight_kg"`
		MeasuredAt *time.Time `json:"measured_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WeightKg <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be positive"})
		return
	}
	at := time.Now()
	if req.MeasuredAt != nil {
		at = *req.MeasuredAt
	}
	if err := s.db.LogBodyweight(r.Context(), uid, req.WeightKg, at); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"weight_kg": req.WeightKg, "measured_at": at})
}

// handleScores computes bodyweight-normalized strength scores for a lift
// total, using the latest logged bodyweight and the lifter's configured
// sex.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	uid, ok := s.mustUserID(w, r)
	if !ok {
		return
	}
	total, err := strconv.ParseFloat(r.URL.Query().Get("total"), 64)
	if err != nil || total <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "total parameter must be a positive number of kilograms"})
		return
	}

	bodyweight, err := s.db.LatestBodyweight(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if bodyweight <= 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "no bodyweight logged; scores need a bodyweight"})
		return
	}
	settings, err := s.db.GetSettings(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{
		"total_kg":      total,
		"bodyweight_kg": bodyweight,
		"dots":          formula.CalculateDOTS(total, bodyweight, settings.Sex),
		"wilks":         formula.CalculateWilks(total, bodyweight, settings.Sex),
		"ipf_gl":        formula.CalculateIPFGL(total, bodyweight, settings.Sex),
	})
}
