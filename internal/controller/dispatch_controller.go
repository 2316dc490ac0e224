// internal/controller/dispatch_controller.go
package controller

import (
	"log"
	"net/http"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

// DispatchController is the cron entry point. It authenticates with the
// shared secret header, not a user session.
type DispatchController struct {
	Dispatcher *service.DispatcherService
	Auth       *auth.Authenticator
}

func (c *DispatchController) Run(w http.ResponseWriter, r *http.Request) {
	if err := c.Auth.RequireCronSecret(r); err != nil {
		writeAuthError(w, err)
		return
	}

	log.Println("SMS scheduled campaigns cron - starting processing...")

	result, err := c.Dispatcher.ProcessDueCampaigns()
	if err != nil {
		log.Println("❌ cron job error:", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
