package handlers

import (
	"net/http"

	"github.com/CrowderSoup/taskboard/services"
)

// WorkspaceHandler serves projects and their members.
type WorkspaceHandler struct {
	workspace *services.WorkspaceService
}

func NewWorkspaceHandler(workspace *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspace: workspace}
}

func (h *WorkspaceHandler) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.workspace.Projects(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (h *WorkspaceHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}

	project, err := h.workspace.CreateProject(r.Context(), req.Title, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

func (h *WorkspaceHandler) Project(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	detail, err := h.workspace.Project(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *WorkspaceHandler) Invite(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		UserID int64 `json:"user_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.UserID <= 0 {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Invalid user_id")
		return
	}

	if err := h.workspace.Invite(r.Context(), id, req.UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Users lists the accounts that can be invited.
func (h *WorkspaceHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.workspace.Invitable(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
