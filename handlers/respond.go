package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/api"
	"github.com/CrowderSoup/taskboard/board"
	"github.com/CrowderSoup/taskboard/services"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, code, message string) {
	var body errorBody
	body.Error.Code = code
	body.Error.Message = message
	writeJSON(w, status, body)
}

// writeError maps err onto a status code and a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	message := err.Error()
	if msg := api.MessageOf(err); msg != "" {
		message = msg
	}
	writeErrorStatus(w, status, code, message)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, api.ErrNotAuthenticated), api.IsUnauthorized(err):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, services.ErrNotManager):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, board.ErrCardNotFound), errors.Is(err, services.ErrNoProjects):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, board.ErrDuplicateCard):
		return http.StatusConflict, "conflict"
	case errors.Is(err, board.ErrNoProject),
		errors.Is(err, board.ErrUnknownColumn),
		errors.Is(err, board.ErrInvalidTitle),
		errors.Is(err, board.ErrImmutableField),
		errors.Is(err, services.ErrEmptyComment):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, board.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}

	if status := api.StatusCode(err); status != 0 {
		if status >= 400 && status < 500 {
			return status, "backend_rejected"
		}
		return http.StatusBadGateway, "backend_error"
	}
	return http.StatusInternalServerError, "internal"
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Invalid request format")
		return false
	}
	return true
}

// pathID reads an integer path variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		writeErrorStatus(w, http.StatusBadRequest, "invalid_request", "Invalid "+name)
		return 0, false
	}
	return id, true
}
