// internal/model/outbound_message.go
package model

import "time"

// Outbound message delivery statuses.
const (
	OutboundPending = "pending"
	OutboundSent    = "sent"
	OutboundFailed  = "failed"
	OutboundTest    = "test"
)

// OutboundMessage is one row of the append-only send audit trail. A row is
// created as pending before the carrier call and updated exactly once with
// the carrier's synchronous response, so every attempt stays observable even
// if the process dies between the call and the update.
type OutboundMessage struct {
	ID               string     `db:"id" json:"id"`
	CampaignID       *string    `db:"campaign_id" json:"campaign_id,omitempty"`
	TemplateID       *string    `db:"template_id" json:"template_id,omitempty"`
	ToPhone          string     `db:"to_phone" json:"to_phone"`
	FromPhone        string     `db:"from_phone" json:"from_phone"`
	MessageBody      string     `db:"message_body" json:"message_body"`
	CharacterCount   int        `db:"character_count" json:"character_count"`
	MessageParts     int        `db:"message_parts" json:"message_parts"`
	Status           string     `db:"status" json:"status"`
	CarrierMessageID string     `db:"carrier_message_id" json:"carrier_message_id,omitempty"`
	ErrorMessage     string     `db:"error_message" json:"error_message,omitempty"`
	SentAt           *time.Time `db:"sent_at" json:"sent_at,omitempty"`
	FailedAt         *time.Time `db:"failed_at" json:"failed_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}
