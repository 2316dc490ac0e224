package controller_test

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/artbattle/sms-marketing-backend/internal/auth"
	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
	"github.com/artbattle/sms-marketing-backend/internal/model"
	"github.com/artbattle/sms-marketing-backend/internal/queue"
)

var testJWTSecret = []byte("test-secret")

type mockAdminRepo struct {
	levels map[string]int
}

func (m *mockAdminRepo) GetAdminLevel(userID string) (int, bool, error) {
	level, ok := m.levels[userID]
	return level, ok, nil
}

func newAuthenticator(levels map[string]int) *auth.Authenticator {
	return &auth.Authenticator{
		JWTSecret:  testJWTSecret,
		CronSecret: "cron-secret",
		AdminRepo:  &mockAdminRepo{levels: levels},
	}
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": userID})
	signed, err := token.SignedString(testJWTSecret)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return "Bearer " + signed
}

func authorize(t *testing.T, r *http.Request, userID string) {
	t.Helper()
	r.Header.Set("Authorization", bearerToken(t, userID))
}

type mockCampaignRepo struct {
	campaigns []*model.Campaign
}

func (m *mockCampaignRepo) Create(c *model.Campaign) error {
	c.ID = fmt.Sprintf("campaign-%d", len(m.campaigns)+1)
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
	return nil, appErrors.NewCampaignNotFound(id)
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
	return nil, nil
}

func (m *mockCampaignRepo) Claim(campaignID, owner string, now time.Time, lease time.Duration) (bool, error) {
	return true, nil
}

func (m *mockCampaignRepo) ReleaseLease(campaignID string) error { return nil }
func (m *mockCampaignRepo) SaveProgress(c *model.Campaign) error { return nil }

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

type mockOutboundRepo struct{}

func (m *mockOutboundRepo) Create(msg *model.OutboundMessage) error       { return nil }
func (m *mockOutboundRepo) MarkSent(id, carrierMessageID string) error    { return nil }
func (m *mockOutboundRepo) MarkFailed(id, errorMessage string) error      { return nil }
func (m *mockOutboundRepo) HasRecentSend(string, time.Time) (bool, error) { return false, nil }
func (m *mockOutboundRepo) CountByStatus(string) (map[string]int, error) {
	return map[string]int{"pending": 0, "sent": 2, "failed": 1}, nil
}

type mockRFMCacheRepo struct {
	mu         sync.Mutex
	timestamps map[string]time.Time
	upserts    int
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
	m.upserts++
	return nil
}

type mockActivityRepo struct{}

func (m *mockActivityRepo) GetActivity(personID string, since time.Time) (*model.PersonActivity, error) {
	return &model.PersonActivity{PersonID: personID}, nil
}

type mockPublisher struct {
	jobs    []queue.SendJob
	failErr error
}

func (m *mockPublisher) PublishSend(job queue.SendJob) error {
	if m.failErr != nil {
		return m.failErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockPublisher) Close() error { return nil }
