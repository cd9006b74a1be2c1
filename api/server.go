package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wricardo/mcp-training/babasolver/game/service"
	"github.com/wricardo/mcp-training/babasolver/game/solver"
	"github.com/wricardo/mcp-training/babasolver/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.SolveService
	hub     *websocket.Hub
	router  *mux.Router
	logger  zerolog.Logger
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(solveService service.SolveService, hub *websocket.Hub, logger zerolog.Logger) *Server {
	s := &Server{
		service: solveService,
		hub:     hub,
		router:  mux.NewRouter(),
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Levels
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels/{name}", s.handleGetLevel).Methods("GET")
	api.HandleFunc("/levels/{name}/simulate", s.handleSimulate).Methods("POST")

	// Solve jobs
	api.HandleFunc("/solves", s.handleStartSolve).Methods("POST")
	api.HandleFunc("/solves", s.handleListSolves).Methods("GET")
	api.HandleFunc("/solves/{id}", s.handleGetSolve).Methods("GET")
	api.HandleFunc("/solves/{id}", s.handleCancelSolve).Methods("DELETE")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Router exposes the mux so other handlers (MCP) can be mounted on it
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service errors to HTTP status codes
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrLevelNotFound), errors.Is(err, service.ErrJobNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrInvalidMoves),
		errors.Is(err, solver.ErrInvalidOptions):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrShuttingDown):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Msg("request-failed")
	}
	respondError(w, status, err.Error())
}

// Level Handlers

func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := s.service.ListLevels(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	if levels == nil {
		levels = []*service.LevelInfo{}
	}
	respondJSON(w, http.StatusOK, levels)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	detail, err := s.service.GetLevel(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Moves []string `json:"moves"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.service.Simulate(r.Context(), mux.Vars(r)["name"], req.Moves)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Solve Handlers

// startSolveRequest overlays its options on solver.DefaultOptions
type startSolveRequest struct {
	Level   string          `json:"level"`
	Options *solver.Options `json:"options,omitempty"`
}

func (s *Server) handleStartSolve(w http.ResponseWriter, r *http.Request) {
	opts := solver.DefaultOptions()
	req := startSolveRequest{Options: &opts}
	if r.Body != nil {
		// An empty body solves the default level with the default options
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Options == nil {
		req.Options = &opts
	}

	job, err := s.service.StartSolve(r.Context(), req.Level, *req.Options)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleListSolves(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.service.ListJobs(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}

	query := r.URL.Query()
	if status := query.Get("status"); status != "" {
		filtered := jobs[:0]
		for _, j := range jobs {
			if string(j.Status) == status {
				filtered = append(filtered, j)
			}
		}
		jobs = filtered
	}

	// Newest last; limit keeps the most recent ones
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(jobs) {
			jobs = jobs[len(jobs)-l:]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"solves": jobs,
		"count":  len(jobs),
	})
}

func (s *Server) handleGetSolve(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.GetJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelSolve(w http.ResponseWriter, r *http.Request) {
	job, err := s.service.CancelJob(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "websocket streaming disabled", http.StatusServiceUnavailable)
		return
	}

	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "job parameter required", http.StatusBadRequest)
		return
	}

	if _, err := s.service.GetJob(r.Context(), jobID); err != nil {
		http.Error(w, "Invalid job", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, jobID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
