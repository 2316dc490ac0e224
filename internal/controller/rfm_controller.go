// internal/controller/rfm_controller.go
package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

type RFMController struct {
	RFM  *service.RFMService
	Auth *auth.Authenticator
}

type rfmBatchBody struct {
	PersonIDs    []string `json:"person_ids"`
	ForceRefresh bool     `json:"force_refresh"`
}

// StreamScores recomputes stale RFM scores for the requested people. When
// nothing is stale it answers with a single JSON object; otherwise it opens
// an event stream and reports batch progress until the terminal event.
func (c *RFMController) StreamScores(w http.ResponseWriter, r *http.Request) {
	if _, err := c.Auth.RequireAdmin(r, auth.LevelAdmin); err != nil {
		writeAuthError(w, err)
		return
	}

	var body rfmBatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	needed, err := c.RFM.Plan(body.PersonIDs, body.ForceRefresh)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if len(needed) == 0 {
		writeJSON(w, http.StatusOK, service.NoWorkResult{
			Success:        true,
			TotalRequested: len(body.PersonIDs),
			Message:        "All RFM scores are current",
		})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	emit := func(event service.ScoreEvent) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	c.RFM.Run(ctx, len(body.PersonIDs), needed, emit)
}
