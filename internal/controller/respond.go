// internal/controller/respond.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service error onto the right status: validation
// failures are 4xx, everything else surfaces as a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	if appErrors.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, ok := err.(*appErrors.ErrCampaignNotFound); ok {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeAuthError(w http.ResponseWriter, err error) {
	writeError(w, auth.StatusFor(err), err.Error())
}
