// internal/controller/sms_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	"github.com/artbattle/sms-marketing-backend/internal/queue"
)

// SMSController accepts ad-hoc single sends and enqueues them for the
// worker; the request never blocks on the carrier.
type SMSController struct {
	Publisher queue.Publisher
	Auth      *auth.Authenticator
}

func (c *SMSController) Send(w http.ResponseWriter, r *http.Request) {
	if _, err := c.Auth.RequireAdmin(r, auth.LevelAdmin); err != nil {
		writeAuthError(w, err)
		return
	}

	var job queue.SendJob
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if job.To == "" || job.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields: to and message are required")
		return
	}

	if err := c.Publisher.PublishSend(job); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to queue message")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"queued":  true,
		"message": "SMS queued for sending",
	})
}
