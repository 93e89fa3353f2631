package handler

import (
	"codelive/internal/model"
	"codelive/internal/service"
	"codelive/internal/transport/rest/middleware"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// LiveHandler handles the broadcast and scratchpad channels
type LiveHandler struct {
	broadcastSvc  *service.BroadcastService
	scratchpadSvc *service.ScratchpadService
}

// NewLiveHandler creates a new live handler
func NewLiveHandler(broadcastSvc *service.BroadcastService, scratchpadSvc *service.ScratchpadService) *LiveHandler {
	return &LiveHandler{
		broadcastSvc:  broadcastSvc,
		scratchpadSvc: scratchpadSvc,
	}
}

// PushRequest is the request body for broadcast and scratchpad pushes.
// Output is whatever the code runner produced and is stored verbatim.
type PushRequest struct {
	Code              string      `json:"code"`
	Language          string      `json:"language"`
	Output            interface{} `json:"output,omitempty"`
	WorkspaceFileID   string      `json:"workspaceFileId,omitempty"`
	WorkspaceFileName string      `json:"workspaceFileName,omitempty"`
}

func (req *PushRequest) snapshot() model.Snapshot {
	return model.Snapshot{
		Code:              req.Code,
		Language:          req.Language,
		Output:            req.Output,
		WorkspaceFileID:   req.WorkspaceFileID,
		WorkspaceFileName: req.WorkspaceFileName,
	}
}

// Live handles GET /v1/sessions/{code}/live
func (h *LiveHandler) Live(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if !studentScopeMatches(r, code) {
		writeError(w, http.StatusForbidden, "token is for a different session")
		return
	}

	view, err := h.broadcastSvc.ReadLive(r.Context(), code)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Broadcast handles POST /v1/sessions/{code}/broadcast
func (h *LiveHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	trainerID := middleware.GetTrainerID(r.Context())

	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.broadcastSvc.Publish(r.Context(), code, trainerID, req.snapshot()); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Scratchpad handles POST /v1/sessions/{code}/scratchpad. The slot is
// keyed by the token identity, never by anything in the body.
func (h *LiveHandler) Scratchpad(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	if !studentScopeMatches(r, code) {
		writeError(w, http.StatusForbidden, "token is for a different session")
		return
	}
	studentID := middleware.GetStudentID(r.Context())

	var req PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.scratchpadSvc.Submit(r.Context(), code, studentID, req.snapshot()); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Scratchpads handles GET /v1/sessions/{code}/scratchpads
func (h *LiveHandler) Scratchpads(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	trainerID := middleware.GetTrainerID(r.Context())

	entries, err := h.scratchpadSvc.ListAll(r.Context(), code, trainerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"scratchpads": entries})
}

// studentScopeMatches checks that a student token was issued for the
// session in the path
func studentScopeMatches(r *http.Request, code string) bool {
	return middleware.GetJoinCode(r.Context()) == service.NormalizeCode(code)
}
