package handler

import (
	"codelive/internal/service"
	"codelive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	sweeperSvc *service.SweeperService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, sweeperSvc *service.SweeperService) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		sweeperSvc: sweeperSvc,
	}
}

// CreateSessionRequest is the request body for creating a session
type CreateSessionRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	trainerID := middleware.GetTrainerID(r.Context())
	if trainerID == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.sessionSvc.CreateSession(r.Context(), trainerID, req.Title, req.Language)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"joinCode": session.JoinCode,
		"title":    session.Title,
		"language": session.Language,
	})
}

// Metadata handles GET /v1/sessions/{code}/metadata
func (h *SessionHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	meta, err := h.sessionSvc.Metadata(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meta)
}

// End handles POST /v1/sessions/{code}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	trainerID := middleware.GetTrainerID(r.Context())

	if err := h.sessionSvc.EndSession(r.Context(), code, trainerID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

// DeactivateExpired handles POST /v1/cron/deactivate-sessions
func (h *SessionHandler) DeactivateExpired(w http.ResponseWriter, r *http.Request) {
	count, err := h.sweeperSvc.Sweep(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"deactivated": count})
}
