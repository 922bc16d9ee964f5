package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/CrowderSoup/taskboard/database"
)

// DataHandler serves the dashboard preferences of the caller
type DataHandler struct {
	dataService *database.DataService
	log         *zap.Logger
}

func NewDataHandler(dataService *database.DataService, log *zap.Logger) *DataHandler {
	return &DataHandler{dataService: dataService, log: log}
}

func (h *DataHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeErrorStatus(w, http.StatusUnauthorized, "unauthorized", "user not found")
		return
	}

	prefs, err := h.dataService.GetUserData(r.Context(), claims.Email)
	if err != nil {
		h.log.Error("failed to get preferences", zap.String("email", claims.Email), zap.Error(err))
		writeErrorStatus(w, http.StatusInternalServerError, "internal", "Server error")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *DataHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		writeErrorStatus(w, http.StatusUnauthorized, "unauthorized", "user not found")
		return
	}

	var prefs database.Preferences
	if !decode(w, r, &prefs) {
		return
	}
	if err := h.dataService.SaveUserData(r.Context(), claims.Email, &prefs); err != nil {
		h.log.Error("failed to save preferences", zap.String("email", claims.Email), zap.Error(err))
		writeErrorStatus(w, http.StatusInternalServerError, "internal", "Failed to save data")
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}
