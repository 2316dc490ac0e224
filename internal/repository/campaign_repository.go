package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
	"github.com/artbattle/sms-marketing-backend/internal/model"
)

type CampaignRepositoryInterface interface {
	Create(c *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error)

	// Dispatcher operations
	ListDue(now time.Time, limit int) ([]*model.Campaign, error)
	Claim(campaignID, owner string, now time.Time, lease time.Duration) (bool, error)
	ReleaseLease(campaignID string) error
	SaveProgress(c *model.Campaign) error
}

type CampaignRepository struct {
	DB *sql.DB
}

const campaignColumns = `id, name, status, messages_sent, messages_failed, total_recipients,
	estimated_cost_cents, scheduled_at, timezone, scheduled_local, lock_owner,
	lease_expires_at, started_at, completed_at, created_at, updated_at, metadata`

func (r *CampaignRepository) Create(c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = time.Now()
	if c.Status == "" {
		c.Status = model.StatusDraft
	}
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO sms_marketing_campaigns
            (id, name, status, messages_sent, messages_failed, total_recipients,
             estimated_cost_cents, scheduled_at, timezone, scheduled_local, created_at, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
    `
	_, err = r.DB.Exec(query,
		c.ID, c.Name, c.Status, c.MessagesSent, c.MessagesFailed, c.TotalRecipients,
		c.EstimatedCostCents, c.ScheduledAt, c.Timezone, c.ScheduledLocal, c.CreatedAt, meta,
	)
	return err
}

func (r *CampaignRepository) GetByID(id string) (*model.Campaign, error) {
	query := fmt.Sprintf(`SELECT %s FROM sms_marketing_campaigns WHERE id=$1`, campaignColumns)
	c, err := scanCampaign(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(offset, limit int, status string) ([]*model.Campaign, int, error) {
	campaigns := []*model.Campaign{}
	query := fmt.Sprintf(`SELECT %s FROM sms_marketing_campaigns WHERE 1=1`, campaignColumns)
	args := []interface{}{}
	argPos := 1

	if status != "" {
		query += fmt.Sprintf(" AND status=$%d", argPos)
		args = append(args, status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, 0, err
		}
		campaigns = append(campaigns, c)
	}

	countQuery := `SELECT COUNT(*) FROM sms_marketing_campaigns WHERE 1=1`
	argsCount := []interface{}{}
	if status != "" {
		countQuery += " AND status=$1"
		argsCount = append(argsCount, status)
	}

	var total int
	if err := r.DB.QueryRow(countQuery, argsCount...).Scan(&total); err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// ListDue finds campaigns the dispatcher should advance: queued, already
// in progress, or scheduled with a due scheduled_at. Oldest first.
func (r *CampaignRepository) ListDue(now time.Time, limit int) ([]*model.Campaign, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM sms_marketing_campaigns
        WHERE status IN ($1, $2) OR (status = $3 AND scheduled_at <= $4)
        ORDER BY created_at ASC
        LIMIT $5
    `, campaignColumns)

	rows, err := r.DB.Query(query, model.StatusQueued, model.StatusInProgress, model.StatusScheduled, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	campaigns := []*model.Campaign{}
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

// Claim transitions a campaign to in_progress under a lease. The conditional
// update is the mutual exclusion between overlapping dispatcher runs: a
// second invocation matches zero rows while the lease is held, and an
// expired lease makes a campaign abandoned by a dead run reclaimable.
func (r *CampaignRepository) Claim(campaignID, owner string, now time.Time, lease time.Duration) (bool, error) {
	query := `
        UPDATE sms_marketing_campaigns
        SET status=$1, lock_owner=$2, lease_expires_at=$3,
            started_at=COALESCE(started_at, $4), updated_at=$4
        WHERE id=$5
          AND status IN ($6, $7, $8)
          AND (lease_expires_at IS NULL OR lease_expires_at < $4)
    `
	res, err := r.DB.Exec(query,
		model.StatusInProgress, owner, now.Add(lease), now,
		campaignID, model.StatusQueued, model.StatusScheduled, model.StatusInProgress,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *CampaignRepository) ReleaseLease(campaignID string) error {
	query := `UPDATE sms_marketing_campaigns SET lock_owner=NULL, lease_expires_at=NULL, updated_at=NOW() WHERE id=$1`
	_, err := r.DB.Exec(query, campaignID)
	return err
}

// SaveProgress checkpoints a campaign after a batch: status, counters,
// completion timestamp and the metadata bag with attempted ids.
func (r *CampaignRepository) SaveProgress(c *model.Campaign) error {
	meta, err := json.Marshal(c.Metadata)
	if err != nil {
		return err
	}
	query := `
        UPDATE sms_marketing_campaigns
        SET status=$1, messages_sent=$2, messages_failed=$3, completed_at=$4,
            metadata=$5, updated_at=NOW()
        WHERE id=$6
    `
	_, err = r.DB.Exec(query, c.Status, c.MessagesSent, c.MessagesFailed, c.CompletedAt, meta, c.ID)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCampaign(row rowScanner) (*model.Campaign, error) {
	var c model.Campaign
	var meta []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Status, &c.MessagesSent, &c.MessagesFailed, &c.TotalRecipients,
		&c.EstimatedCostCents, &c.ScheduledAt, &c.Timezone, &c.ScheduledLocal, &c.LockOwner,
		&c.LeaseExpiresAt, &c.StartedAt, &c.CompletedAt, &c.CreatedAt, &c.UpdatedAt, &meta,
	)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return nil, err
		}
	}
	return &c, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
