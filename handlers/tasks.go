package handlers

import (
	"net/http"

	"github.com/CrowderSoup/taskboard/services"
)

// TaskHandler serves the task detail view.
type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	task, err := h.tasks.Task(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.tasks.UpdateDescription(r.Context(), id, req.Description))
}

func (h *TaskHandler) UpdatePriority(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Priority int `json:"priority"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.Priority < 1 || req.Priority > 3 {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "priority must be 1, 2 or 3")
		return
	}
	h.respond(w, h.tasks.UpdatePriority(r.Context(), id, req.Priority))
}

func (h *TaskHandler) UpdateEstimate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		EstimatedTime float64 `json:"estimated_time"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.EstimatedTime < 0 {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "estimated_time cannot be negative")
		return
	}
	h.respond(w, h.tasks.UpdateEstimate(r.Context(), id, req.EstimatedTime))
}

type userRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *TaskHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.tasks.Assign(r.Context(), id, req.UserID))
}

func (h *TaskHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req userRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.tasks.Unassign(r.Context(), id, req.UserID))
}

func (h *TaskHandler) Comments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	comments, err := h.tasks.Comments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !decode(w, r, &req) {
		return
	}
	comment, err := h.tasks.AddComment(r.Context(), id, req.Comment)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (h *TaskHandler) EditComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req commentRequest
	if !decode(w, r, &req) {
		return
	}
	h.respond(w, h.tasks.EditComment(r.Context(), id, req.Comment))
}

func (h *TaskHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h.respond(w, h.tasks.DeleteComment(r.Context(), id))
}

func (h *TaskHandler) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
