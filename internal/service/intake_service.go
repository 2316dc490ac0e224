// internal/service/intake_service.go
package service

import (
	"time"

	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
	"github.com/artbattle/sms-marketing-backend/internal/sms"
)

// PerSegmentCostCents is the flat carrier rate used for cost estimates.
const PerSegmentCostCents = 1

type CreateCampaignRequest struct {
	CampaignName       string         `json:"campaign_name"`
	Message            string         `json:"message"`
	PersonIDs          []string       `json:"person_ids"`
	EventID            string         `json:"event_id,omitempty"`
	TargetingCriteria  map[string]any `json:"targeting_criteria,omitempty"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty"`
	Timezone           string         `json:"timezone,omitempty"`
	TestMode           bool           `json:"test_mode,omitempty"`
	DryRunMode         bool           `json:"dry_run_mode,omitempty"`
	DryRunPhone        string         `json:"dry_run_phone,omitempty"`
	RecentMessageHours int            `json:"recent_message_hours,omitempty"`
	CreatedBy          string         `json:"-"`
}

type IntakeResult struct {
	Success            bool   `json:"success"`
	CampaignID         string `json:"campaign_id"`
	CampaignName       string `json:"campaign_name"`
	RecipientsTargeted int    `json:"recipients_targeted"`
	RecipientsValid    int    `json:"recipients_valid"`
	RecipientsBlocked  int    `json:"recipients_blocked"`
	MessagesQueued     int    `json:"messages_queued"`
	EstimatedCostCents int    `json:"estimated_cost_cents"`
	Status             string `json:"status"`
	Message            string `json:"message"`
}

// IntakeService validates campaign requests, resolves and filters the
// audience, and persists the campaign with its recipient snapshot. It never
// sends inline; even immediate campaigns are queued for the dispatcher.
type IntakeService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	PersonRepo   repository.PersonRepositoryInterface
	Now          func() time.Time
}

func (s *IntakeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *IntakeService) CreateCampaign(req CreateCampaignRequest) (*IntakeResult, error) {
	if req.CampaignName == "" || req.Message == "" {
		return nil, appErrors.NewValidation("campaign_name and message are required")
	}
	if len(req.PersonIDs) == 0 {
		return nil, appErrors.NewValidation("person_ids array is required and must not be empty")
	}
	if req.DryRunMode && req.DryRunPhone == "" {
		return nil, appErrors.NewValidation("dry_run_phone is required in dry_run_mode")
	}

	// Resolve the audience. The repository chunks the id list under the
	// row-limit ceiling; the concatenated result is the full audience.
	people, err := s.PersonRepo.GetByIDs(req.PersonIDs)
	if err != nil {
		return nil, err
	}

	valid := make([]model.Person, 0, len(people))
	for _, p := range people {
		if !p.Blocked && sms.HasUsablePhone(p.Phone) {
			valid = append(valid, p)
		}
	}
	blockedCount := len(people) - len(valid)

	if len(valid) == 0 {
		return nil, appErrors.NewValidation("No valid recipients found (all blocked or missing phone numbers)")
	}

	snapshot := make([]model.Recipient, 0, len(valid))
	if req.DryRunMode {
		snapshot = append(snapshot, s.dryRunRecipient(req.DryRunPhone))
	} else {
		for _, p := range valid {
			snapshot = append(snapshot, model.Recipient{
				PersonID:  p.ID,
				Phone:     sms.NormalizePhone(p.Phone),
				FirstName: p.FirstName,
				LastName:  p.LastName,
				Hash:      p.Hash,
			})
		}
	}

	now := s.now()
	status := model.StatusQueued
	statusMessage := "Campaign created and messages queued for sending"
	switch {
	case req.TestMode:
		status = model.StatusTest
		statusMessage = "Campaign created in test mode - no messages sent"
	case req.ScheduledAt != nil && req.ScheduledAt.After(now):
		status = model.StatusScheduled
		statusMessage = "Campaign scheduled for sending"
	}

	segments := sms.SegmentCount(req.Message)
	costCents := len(snapshot) * segments * PerSegmentCostCents

	campaign := &model.Campaign{
		Name:               req.CampaignName,
		Status:             status,
		TotalRecipients:    len(snapshot),
		EstimatedCostCents: costCents,
		ScheduledAt:        req.ScheduledAt,
		Timezone:           req.Timezone,
		ScheduledLocal:     formatScheduledLocal(req.ScheduledAt, req.Timezone),
		Metadata: model.CampaignMetadata{
			MessageTemplate:    req.Message,
			RecipientData:      snapshot,
			TargetingCriteria:  req.TargetingCriteria,
			DryRun:             req.DryRunMode,
			RecentMessageHours: req.RecentMessageHours,
			CreatedBy:          req.CreatedBy,
		},
	}

	if err := s.CampaignRepo.Create(campaign); err != nil {
		return nil, err
	}

	return &IntakeResult{
		Success:            true,
		CampaignID:         campaign.ID,
		CampaignName:       campaign.Name,
		RecipientsTargeted: len(req.PersonIDs),
		RecipientsValid:    len(valid),
		RecipientsBlocked:  blockedCount,
		MessagesQueued:     len(snapshot),
		EstimatedCostCents: costCents,
		Status:             status,
		Message:            statusMessage,
	}, nil
}

// dryRunRecipient builds the single synthetic recipient that replaces the
// whole audience in dry-run mode. Real contact data is used when the test
// phone belongs to a known person.
func (s *IntakeService) dryRunRecipient(phone string) model.Recipient {
	normalized := sms.NormalizePhone(phone)
	if person, err := s.PersonRepo.GetByPhone(normalized); err == nil && person != nil {
		return model.Recipient{
			PersonID:  person.ID,
			Phone:     normalized,
			FirstName: person.FirstName,
			LastName:  person.LastName,
			Hash:      person.Hash,
		}
	}
	return model.Recipient{
		PersonID:  "dry-run",
		Phone:     normalized,
		FirstName: "Test",
		LastName:  "Recipient",
	}
}

func formatScheduledLocal(at *time.Time, tz string) string {
	if at == nil {
		return ""
	}
	loc, err := time.LoadLocation(tz)
	if err != nil || tz == "" {
		loc = time.UTC
	}
	return at.In(loc).Format("Jan 2, 2006 3:04 PM MST")
}
