// internal/service/campaign_service.go
package service

import (
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
)

// CampaignService serves the read side: campaign detail with delivery stats
// and the paginated listing.
type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	OutboundRepo repository.OutboundMessageRepositoryInterface
}

type CampaignDetails struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Status             string         `json:"status"`
	MessagesSent       int            `json:"messages_sent"`
	MessagesFailed     int            `json:"messages_failed"`
	TotalRecipients    int            `json:"total_recipients"`
	EstimatedCostCents int            `json:"estimated_cost_cents"`
	ScheduledAt        *time.Time     `json:"scheduled_at,omitempty"`
	ScheduledLocal     string         `json:"scheduled_local,omitempty"`
	StartedAt          *time.Time     `json:"started_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	AttemptedCount     int            `json:"attempted_count"`
	Stats              map[string]int `json:"stats"`
}

// GetCampaignDetailsWithStats fetches a campaign plus outbound delivery
// counts grouped by status.
func (s *CampaignService) GetCampaignDetailsWithStats(campaignID string) (*CampaignDetails, error) {
	campaign, err := s.CampaignRepo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.OutboundRepo.CountByStatus(campaignID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, count := range stats {
		total += count
	}
	stats["total"] = total

	return &CampaignDetails{
		ID:                 campaign.ID,
		Name:               campaign.Name,
		Status:             campaign.Status,
		MessagesSent:       campaign.MessagesSent,
		MessagesFailed:     campaign.MessagesFailed,
		TotalRecipients:    campaign.TotalRecipients,
		EstimatedCostCents: campaign.EstimatedCostCents,
		ScheduledAt:        campaign.ScheduledAt,
		ScheduledLocal:     campaign.ScheduledLocal,
		StartedAt:          campaign.StartedAt,
		CompletedAt:        campaign.CompletedAt,
		CreatedAt:          campaign.CreatedAt,
		AttemptedCount:     len(campaign.Metadata.AttemptedRecipientIDs),
		Stats:              stats,
	}, nil
}

// ListCampaigns fetches campaigns with pagination
func (s *CampaignService) ListCampaigns(page, pageSize int, status string) ([]model.Campaign, map[string]int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(offset, pageSize, status)
	if err != nil {
		return nil, nil, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	totalPages := (total + pageSize - 1) / pageSize
	pagination := map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": totalPages,
	}

	return campaigns, pagination, nil
}
