package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

type OutboundMessageRepositoryInterface interface {
	Create(msg *model.OutboundMessage) error
	MarkSent(id, carrierMessageID string) error
	MarkFailed(id, errorMessage string) error
	HasRecentSend(phone string, since time.Time) (bool, error)
	CountByStatus(campaignID string) (map[string]int, error)
}

type OutboundMessageRepository struct {
	DB *sql.DB
}

// Create inserts a pending outbound log row before the carrier is called.
func (r *OutboundMessageRepository) Create(msg *model.OutboundMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	msg.CreatedAt = time.Now()

	query := `
        INSERT INTO sms_outbound
        (id, campaign_id, template_id, to_phone, from_phone, message_body,
         character_count, message_parts, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	_, err := r.DB.Exec(query,
		msg.ID, msg.CampaignID, msg.TemplateID, msg.ToPhone, msg.FromPhone,
		msg.MessageBody, msg.CharacterCount, msg.MessageParts, msg.Status, msg.CreatedAt,
	)
	return err
}

func (r *OutboundMessageRepository) MarkSent(id, carrierMessageID string) error {
	query := `UPDATE sms_outbound SET status=$1, carrier_message_id=$2, sent_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.OutboundSent, carrierMessageID, id)
	return err
}

func (r *OutboundMessageRepository) MarkFailed(id, errorMessage string) error {
	query := `UPDATE sms_outbound SET status=$1, error_message=$2, failed_at=NOW() WHERE id=$3`
	_, err := r.DB.Exec(query, model.OutboundFailed, errorMessage, id)
	return err
}

// HasRecentSend reports whether the destination already received an outbound
// message inside the dedup window, from any campaign. Pending rows count:
// an in-flight attempt from a concurrent campaign is still a duplicate.
func (r *OutboundMessageRepository) HasRecentSend(phone string, since time.Time) (bool, error) {
	query := `
        SELECT 1 FROM sms_outbound
        WHERE to_phone = $1 AND status IN ($2, $3) AND created_at >= $4
        LIMIT 1
    `
	row := r.DB.QueryRow(query, phone, model.OutboundPending, model.OutboundSent, since)
	var tmp int
	if err := row.Scan(&tmp); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *OutboundMessageRepository) CountByStatus(campaignID string) (map[string]int, error) {
	query := `SELECT status, COUNT(*) FROM sms_outbound WHERE campaign_id=$1 GROUP BY status`
	rows, err := r.DB.Query(query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := map[string]int{"pending": 0, "sent": 0, "failed": 0}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

var _ OutboundMessageRepositoryInterface = (*OutboundMessageRepository)(nil)
