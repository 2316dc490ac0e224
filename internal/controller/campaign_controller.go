// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

type CampaignController struct {
	Intake    *service.IntakeService
	Campaigns *service.CampaignService
	Auth      *auth.Authenticator
}

type createCampaignBody struct {
	CampaignName       string         `json:"campaign_name"`
	Message            string         `json:"message"`
	PersonIDs          []string       `json:"person_ids"`
	EventID            string         `json:"event_id"`
	TargetingCriteria  map[string]any `json:"targeting_criteria"`
	ScheduledAt        *string        `json:"scheduled_at"`
	Timezone           string         `json:"timezone"`
	TestMode           bool           `json:"test_mode"`
	DryRunMode         bool           `json:"dry_run_mode"`
	DryRunPhone        string         `json:"dry_run_phone"`
	RecentMessageHours int            `json:"recent_message_hours"`
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	userID, err := c.Auth.RequireAdmin(r, auth.LevelSuperAdmin)
	if err != nil {
		writeAuthError(w, err)
		return
	}

	var body createCampaignBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var scheduledAt *time.Time
	if body.ScheduledAt != nil && *body.ScheduledAt != "" {
		t, err := time.Parse(time.RFC3339, *body.ScheduledAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "scheduled_at must be RFC3339")
			return
		}
		scheduledAt = &t
	}

	result, err := c.Intake.CreateCampaign(service.CreateCampaignRequest{
		CampaignName:       body.CampaignName,
		Message:            body.Message,
		PersonIDs:          body.PersonIDs,
		EventID:            body.EventID,
		TargetingCriteria:  body.TargetingCriteria,
		ScheduledAt:        scheduledAt,
		Timezone:           body.Timezone,
		TestMode:           body.TestMode,
		DryRunMode:         body.DryRunMode,
		DryRunPhone:        body.DryRunPhone,
		RecentMessageHours: body.RecentMessageHours,
		CreatedBy:          userID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	if _, err := c.Auth.RequireAdmin(r, auth.LevelAdmin); err != nil {
		writeAuthError(w, err)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.Campaigns.ListCampaigns(page, pageSize, status)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) GetCampaign(w http.ResponseWriter, r *http.Request) {
	if _, err := c.Auth.RequireAdmin(r, auth.LevelAdmin); err != nil {
		writeAuthError(w, err)
		return
	}

	id := chi.URLParam(r, "id")
	details, err := c.Campaigns.GetCampaignDetailsWithStats(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}
