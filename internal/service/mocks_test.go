package service_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/service"
)

// Mock repositories shared by the pipeline tests.

type mockPersonRepo struct {
	people []model.Person
}

func (m *mockPersonRepo) GetByIDs(ids []string) ([]model.Person, error) {
	byID := make(map[string]model.Person, len(m.people))
	for _, p := range m.people {
		byID[p.ID] = p
	}
	var result []model.Person
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPersonRepo) GetByPhone(phone string) (*model.Person, error) {
	for _, p := range m.people {
		if p.Phone == phone {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

type mockOptOutRepo struct {
	optedOut map[string]bool
}

func (m *mockOptOutRepo) IsOptedOut(phone string) (bool, error) {
	return m.optedOut[phone], nil
}

type mockOutboundRepo struct {
	clock func() time.Time
	rows  []*model.OutboundMessage
}

func (m *mockOutboundRepo) Create(msg *model.OutboundMessage) error {
	msg.ID = fmt.Sprintf("out-%d", len(m.rows)+1)
	if m.clock != nil {
		msg.CreatedAt = m.clock()
	} else {
		msg.CreatedAt = time.Now()
	}
	m.rows = append(m.rows, msg)
	return nil
}

func (m *mockOutboundRepo) MarkSent(id, carrierMessageID string) error {
	for _, row := range m.rows {
		if row.ID == id {
			row.Status = model.OutboundSent
			row.CarrierMessageID = carrierMessageID
		}
	}
	return nil
}

func (m *mockOutboundRepo) MarkFailed(id, errorMessage string) error {
	for _, row := range m.rows {
		if row.ID == id {
			row.Status = model.OutboundFailed
			row.ErrorMessage = errorMessage
		}
	}
	return nil
}

func (m *mockOutboundRepo) HasRecentSend(phone string, since time.Time) (bool, error) {
	for _, row := range m.rows {
		if row.ToPhone != phone || row.CreatedAt.Before(since) {
			continue
		}
		if row.Status == model.OutboundPending || row.Status == model.OutboundSent {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOutboundRepo) CountByStatus(campaignID string) (map[string]int, error) {
	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for _, row := range m.rows {
		if row.CampaignID != nil && *row.CampaignID == campaignID {
			stats[row.Status]++
		}
	}
	return stats, nil
}

type carrierCall struct {
	from, to, text string
}

type mockCarrier struct {
	calls   []carrierCall
	failErr error
}

func (m *mockCarrier) Send(from, to, text string) (string, error) {
	m.calls = append(m.calls, carrierCall{from, to, text})
	if m.failErr != nil {
		return "", m.failErr
	}
	return fmt.Sprintf("carrier-msg-%d", len(m.calls)), nil
}

// mockCampaignRepo keeps campaigns in memory with lease semantics matching
// the real conditional-update claim.
type mockCampaignRepo struct {
	campaigns []*model.Campaign
	saves     int
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	if c.ID == "" {
		c.ID = fmt.Sprintf("campaign-%d", len(m.campaigns)+1)
	}
	c.CreatedAt = time.Now()
	m.campaigns = append(m.campaigns, c)
	return nil
}

func (m *mockCampaignRepo) GetByID(id string) (*model.Campaign, error) {
	for _, c := range m.campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("campaign with ID %s not found", id)
}

func (m *mockCampaignRepo) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	var matched []*model.Campaign
	for _, c := range m.campaigns {
		if status == "" || c.Status == status {
			matched = append(matched, c)
		}
	}
	total := len(matched)
	if offset >= len(matched) {
		return []*model.Campaign{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockCampaignRepo) ListDue(now time.Time, limit int) ([]*model.Campaign, error) {
	var due []*model.Campaign
	for _, c := range m.campaigns {
		switch c.Status {
		case model.StatusQueued, model.StatusInProgress:
			due = append(due, c)
		case model.StatusScheduled:
			if c.ScheduledAt != nil && !c.ScheduledAt.After(now) {
				due = append(due, c)
			}
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

func (m *mockCampaignRepo) Claim(campaignID, owner string, now time.Time, lease time.Duration) (bool, error) {
	c, err := m.GetByID(campaignID)
	if err != nil {
		return false, err
	}
	claimable := c.Status == model.StatusQueued || c.Status == model.StatusScheduled || c.Status == model.StatusInProgress
	if !claimable {
		return false, nil
	}
	if c.LeaseExpiresAt != nil && c.LeaseExpiresAt.After(now) {
		return false, nil
	}
	expires := now.Add(lease)
	c.Status = model.StatusInProgress
	c.LockOwner = &owner
	c.LeaseExpiresAt = &expires
	if c.StartedAt == nil {
		c.StartedAt = &now
	}
	return true, nil
}

func (m *mockCampaignRepo) ReleaseLease(campaignID string) error {
	c, err := m.GetByID(campaignID)
	if err != nil {
		return err
	}
	c.LockOwner = nil
	c.LeaseExpiresAt = nil
	return nil
}

func (m *mockCampaignRepo) SaveProgress(c *model.Campaign) error {
	m.saves++
	return nil
}

// mockSender records send requests and fails the phones it is told to.
type mockSender struct {
	mu       sync.Mutex
	requests []service.SendRequest
	failFor  map[string]string // phone -> failure reason
}

func (m *mockSender) Send(req service.SendRequest) (service.SendOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if reason, ok := m.failFor[req.To]; ok {
		return service.SendOutcome{Kind: service.OutcomeCarrierFailed, To: req.To, Reason: reason}, nil
	}
	return service.SendOutcome{Kind: service.OutcomeSent, To: req.To}, nil
}

type mockRFMCacheRepo struct {
	mu         sync.Mutex
	timestamps map[string]time.Time
	upserts    []*model.RFMScore
}

func (m *mockRFMCacheRepo) GetCalculatedAt(personIDs []string) (map[string]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make(map[string]time.Time)
	for _, id := range personIDs {
		if at, ok := m.timestamps[id]; ok {
			result[id] = at
		}
	}
	return result, nil
}

func (m *mockRFMCacheRepo) Upsert(score *model.RFMScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timestamps == nil {
		m.timestamps = make(map[string]time.Time)
	}
	m.timestamps[score.PersonID] = score.CalculatedAt
	m.upserts = append(m.upserts, score)
	return nil
}

type mockActivityRepo struct {
	mu         sync.Mutex
	activities map[string]*model.PersonActivity
	failFor    map[string]error
}

func (m *mockActivityRepo) GetActivity(personID string, since time.Time) (*model.PersonActivity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[personID]; ok {
		return nil, err
	}
	if a, ok := m.activities[personID]; ok {
		return a, nil
	}
	return &model.PersonActivity{PersonID: personID}, nil
}
