// internal/service/dispatcher_service.go
package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
)

const (
	// DefaultBatchSize bounds how many recipients one tick advances a
	// campaign by, so a tick fits the platform wall-clock limit.
	DefaultBatchSize = 100

	// DefaultMaxCampaignsPerTick bounds how many campaigns one tick touches.
	DefaultMaxCampaignsPerTick = 10

	// DefaultRatePerMinute is the toll-free sending ceiling; sends inside a
	// batch are spaced by a fixed cooperative delay derived from it.
	DefaultRatePerMinute = 500

	// DefaultLeaseDuration is how long a claim on a campaign holds before a
	// later tick may reclaim it from a dead invocation.
	DefaultLeaseDuration = 10 * time.Minute

	// maxFailureDetails caps the retained per-recipient failure sample.
	maxFailureDetails = 50
)

type CampaignTickResult struct {
	CampaignID      string `json:"campaign_id"`
	CampaignName    string `json:"campaign_name"`
	Success         bool   `json:"success"`
	BatchSent       int    `json:"batch_sent,omitempty"`
	BatchFailed     int    `json:"batch_failed,omitempty"`
	TotalSent       int    `json:"total_sent,omitempty"`
	TotalRecipients int    `json:"total_recipients,omitempty"`
	Status          string `json:"status,omitempty"`
	Error           string `json:"error,omitempty"`
}

type TickResult struct {
	Success   bool                 `json:"success"`
	Processed int                  `json:"processed"`
	Results   []CampaignTickResult `json:"results"`
	Message   string               `json:"message,omitempty"`
}

// DispatcherService advances due campaigns by one bounded batch per tick.
// All cross-tick state lives on the campaign row, so a crash loses at most
// the in-flight batch.
type DispatcherService struct {
	CampaignRepo        repository.CampaignRepositoryInterface
	Sender              SendPrimitive
	Owner               string
	BatchSize           int
	MaxCampaignsPerTick int
	RatePerMinute       int
	LeaseDuration       time.Duration
	Now                 func() time.Time
	Sleep               func(time.Duration)
}

func (s *DispatcherService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *DispatcherService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (s *DispatcherService) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return DefaultBatchSize
}

func (s *DispatcherService) maxCampaigns() int {
	if s.MaxCampaignsPerTick > 0 {
		return s.MaxCampaignsPerTick
	}
	return DefaultMaxCampaignsPerTick
}

func (s *DispatcherService) lease() time.Duration {
	if s.LeaseDuration > 0 {
		return s.LeaseDuration
	}
	return DefaultLeaseDuration
}

func (s *DispatcherService) rateDelay() time.Duration {
	rate := s.RatePerMinute
	if rate <= 0 {
		rate = DefaultRatePerMinute
	}
	return time.Minute / time.Duration(rate)
}

// ProcessDueCampaigns runs one dispatcher tick: claim each due campaign,
// advance it by one batch, checkpoint progress. One campaign failing never
// touches the others in the same tick.
func (s *DispatcherService) ProcessDueCampaigns() (*TickResult, error) {
	now := s.now()
	campaigns, err := s.CampaignRepo.ListDue(now, s.maxCampaigns())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch campaigns: %w", err)
	}

	if len(campaigns) == 0 {
		return &TickResult{Success: true, Processed: 0, Message: "No scheduled campaigns to process"}, nil
	}

	log.Printf("Found %d scheduled campaigns to process", len(campaigns))

	result := &TickResult{Success: true, Results: []CampaignTickResult{}}
	for _, campaign := range campaigns {
		claimed, err := s.CampaignRepo.Claim(campaign.ID, s.Owner, s.now(), s.lease())
		if err != nil {
			log.Printf("⚠️ failed to claim campaign %s: %v", campaign.ID, err)
			continue
		}
		if !claimed {
			log.Printf("campaign %s lease held elsewhere, skipping", campaign.ID)
			continue
		}
		result.Processed++

		tickResult, err := s.processCampaign(campaign)
		if err != nil {
			log.Printf("❌ error processing campaign %s: %v", campaign.ID, err)
			s.markFailed(campaign, err)
			result.Results = append(result.Results, CampaignTickResult{
				CampaignID:   campaign.ID,
				CampaignName: campaign.Name,
				Success:      false,
				Error:        err.Error(),
			})
			continue
		}
		result.Results = append(result.Results, *tickResult)
	}

	return result, nil
}

func (s *DispatcherService) processCampaign(campaign *model.Campaign) (*CampaignTickResult, error) {
	defer func() {
		if err := s.CampaignRepo.ReleaseLease(campaign.ID); err != nil {
			log.Printf("⚠️ failed to release lease on campaign %s: %v", campaign.ID, err)
		}
	}()

	message := campaign.Metadata.MessageTemplate
	recipients := campaign.Metadata.RecipientData
	if message == "" || len(recipients) == 0 {
		return nil, fmt.Errorf("missing message template or recipient data")
	}

	remaining := campaign.Remaining()
	batch := remaining
	if len(batch) > s.batchSize() {
		batch = batch[:s.batchSize()]
	}

	log.Printf("Processing batch: %d recipients (%d remaining of %d total)", len(batch), len(remaining), len(recipients))

	sentCount := 0
	failedCount := 0
	attempted := campaign.Metadata.AttemptedRecipientIDs
	attemptedSet := make(map[string]struct{}, len(attempted))
	for _, id := range attempted {
		attemptedSet[id] = struct{}{}
	}
	failureDetails := campaign.Metadata.FailureDetails

	delay := s.rateDelay()
	for i, person := range batch {
		// An id is attempted at most once per campaign; no retry on failure.
		if _, seen := attemptedSet[person.PersonID]; !seen {
			attempted = append(attempted, person.PersonID)
			attemptedSet[person.PersonID] = struct{}{}
		}

		outcome, err := s.Sender.Send(SendRequest{
			To:                 person.Phone,
			Message:            message,
			CampaignID:         &campaign.ID,
			RecentMessageHours: campaign.Metadata.RecentMessageHours,
		})

		switch {
		case err == nil && outcome.Success():
			sentCount++
		default:
			failedCount++
			reason := outcome.Reason
			if err != nil {
				reason = err.Error()
			}
			log.Printf("Failed to send to %s: %s", person.Phone, reason)
			if len(failureDetails) < maxFailureDetails {
				failureDetails = append(failureDetails, model.FailureDetail{
					PersonID:  person.PersonID,
					Phone:     person.Phone,
					Name:      strings.TrimSpace(person.FirstName + " " + person.LastName),
					Error:     reason,
					Timestamp: s.now(),
				})
			}
		}

		if i < len(batch)-1 {
			s.sleep(delay)
		}
	}

	campaign.Metadata.AttemptedRecipientIDs = attempted
	campaign.Metadata.FailureDetails = failureDetails
	campaign.MessagesSent += sentCount
	campaign.MessagesFailed += failedCount

	isComplete := len(attempted) >= len(recipients)
	if isComplete {
		campaign.Status = model.StatusCompleted
		completedAt := s.now()
		campaign.CompletedAt = &completedAt
	} else {
		campaign.Status = model.StatusInProgress
	}

	if err := s.CampaignRepo.SaveProgress(campaign); err != nil {
		return nil, fmt.Errorf("failed to checkpoint campaign progress: %w", err)
	}

	log.Printf("Campaign %s: sent %d, failed %d, progress %d/%d", campaign.Name, sentCount, failedCount, len(attempted), len(recipients))

	return &CampaignTickResult{
		CampaignID:      campaign.ID,
		CampaignName:    campaign.Name,
		Success:         true,
		BatchSent:       sentCount,
		BatchFailed:     failedCount,
		TotalSent:       campaign.MessagesSent,
		TotalRecipients: len(recipients),
		Status:          campaign.Status,
	}, nil
}

// markFailed aborts a single campaign. The error is persisted in metadata;
// the campaign is not retried automatically.
func (s *DispatcherService) markFailed(campaign *model.Campaign, cause error) {
	failedAt := s.now()
	campaign.Status = model.StatusFailed
	campaign.Metadata.Error = cause.Error()
	campaign.Metadata.FailedAt = &failedAt
	if err := s.CampaignRepo.SaveProgress(campaign); err != nil {
		log.Printf("⚠️ failed to mark campaign %s as failed: %v", campaign.ID, err)
	}
}
