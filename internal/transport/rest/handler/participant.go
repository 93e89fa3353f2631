package handler

import (
	"codelive/internal/service"
	"codelive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// ParticipantHandler handles join/leave endpoints
type ParticipantHandler struct {
	participantSvc *service.ParticipantService
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(participantSvc *service.ParticipantService) *ParticipantHandler {
	return &ParticipantHandler{participantSvc: participantSvc}
}

// JoinRequest is the request body for joining a session
type JoinRequest struct {
	UserID string `json:"userId,omitempty"`
	Name   string `json:"name"`
}

// Join handles POST /v1/sessions/{code}/join
func (h *ParticipantHandler) Join(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.participantSvc.Join(r.Context(), code, req.UserID, req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Leave handles POST /v1/sessions/{code}/leave. Always answers 200: leave
// runs on teardown and has no error surface.
func (h *ParticipantHandler) Leave(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	studentID := middleware.GetStudentID(r.Context())

	h.participantSvc.Leave(r.Context(), code, studentID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
