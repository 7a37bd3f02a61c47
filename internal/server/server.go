package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/session"
	"github.com/meltforce/liftlog/internal/storage"
)

// Server holds dependencies for HTTP handlers plus the in-memory
// registry of live session runners.
type Server struct {
	db     *storage.DB
	log    *slog.Logger
	apiKey string
	router chi.Router

	mu       sync.Mutex
	sessions map[uuid.UUID]*liveSession
}

// liveSession pairs a runner with the lifter who owns it. Runner state is
// single-owner; every handler touching the runner holds the session mutex.
type liveSession struct {
	mu     sync.Mutex
	runner *session.Runner
	userID int
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
		sessions: make(map[uuid.UUID]*liveSession),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)
	s.router.Use(Identity)

	// Import endpoint (API key required)
	s.router.Route("/api/v1/import", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/sets", s.handleImportSets)
	})

	// Identity
	s.router.Get("/api/v1/me", s.handleMe)

	// Catalog and templates
	s.router.Get("/api/v1/exercises", s.handleListExercises)
	s.router.Post("/api/v1/exercises", s.handleCreateExercise)
	s.router.Get("/api/v1/exercises/{id}/history", s.handleExerciseHistory)
	s.router.Get("/api/v1/exercises/{id}/one-rm", s.handleGetOneRM)
	s.router.Get("/api/v1/templates", s.handleListTemplates)
	s.router.Post("/api/v1/templates", s.handleCreateTemplate)
	s.router.Get("/api/v1/templates/{id}/exercises", s.handleTemplateExercises)

	// Live session lifecycle
	s.router.Post("/api/v1/sessions", s.handleStartSession)
	s.router.Route("/api/v1/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.handleSessionState)
		r.Get("/suggest", s.handleSuggest)
		r.Post("/warmups", s.handlePlanWarmups)
		r.Post("/sets", s.handleLogSet)
		r.Delete("/sets", s.handleRemoveSet)
		r.Post("/extra-set", s.handleAddExtraSet)
		r.Post("/exercises", s.handleAddExercise)
		r.Put("/exercises/{position}", s.handleSwapExercise)
		r.Post("/readiness", s.handleReadiness)
		r.Post("/advance", s.handleAdvance)
		r.Post("/finish", s.handleFinish)
		r.Post("/prs", s.handleResolvePRs)
	})

	// History and analysis
	s.router.Get("/api/v1/history", s.handleQueryHistory)
	s.router.Get("/api/v1/records", s.handlePersonalRecords)
	s.router.Get("/api/v1/scores", s.handleScores)
	s.router.Post("/api/v1/bodyweight", s.handleLogBodyweight)
	s.router.Get("/api/v1/bodyweight", s.handleLatestBodyweight)

	// Settings
	s.router.Get("/api/v1/settings", s.handleGetSettings)
	s.router.Put("/api/v1/settings", s.handleSaveSettings)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, _ := UserInfoFromContext(r.Context())
	writeJSON(w, http.StatusOK, info)
}

// mustUserID resolves the request identity to a database user ID,
// writing a 500 and returning false on failure.
func (s *Server) mustUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	info, ok := UserInfoFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no identity"})
		return 0, false
	}
	uid, err := s.db.GetOrCreateUser(r.Context(), info.Login, info.DisplayName)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return 0, false
	}
	return uid, true
}

// liveSessionFor looks up a registered runner and checks ownership.
func (s *Server) liveSessionFor(w http.ResponseWriter, r *http.Request, userID int) (*liveSession, bool) {
	idStr := chi.URLParam(r, "id")
	sessionID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	s.mu.Lock()
	ls, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok || ls.userID != userID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return ls, true
}
