// internal/model/campaign.go
package model

import "time"

// Campaign lifecycle statuses. Transitions are monotonic: draft/test are
// never dispatched, queued/scheduled campaigns move to in_progress once the
// dispatcher picks them up, and completed/failed are terminal.
const (
	StatusDraft      = "draft"
	StatusTest       = "test"
	StatusQueued     = "queued"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Recipient is one audience member captured at intake time. The snapshot is
// frozen on creation; the dispatcher never re-queries audience membership.
type Recipient struct {
	PersonID  string `json:"person_id"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Hash      string `json:"hash,omitempty"`
}

// FailureDetail records one failed send attempt for a campaign.
type FailureDetail struct {
	PersonID  string    `json:"person_id"`
	Phone     string    `json:"phone"`
	Name      string    `json:"name"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}

// CampaignMetadata is the jsonb bag on the campaign row. The dispatcher
// appends to AttemptedRecipientIDs and FailureDetails as it makes progress;
// AttemptedRecipientIDs only ever grows and never holds duplicates.
type CampaignMetadata struct {
	MessageTemplate       string          `json:"message_template"`
	RecipientData         []Recipient     `json:"recipient_data"`
	AttemptedRecipientIDs []string        `json:"attempted_recipient_ids,omitempty"`
	FailureDetails        []FailureDetail `json:"failure_details,omitempty"`
	TargetingCriteria     map[string]any  `json:"targeting_criteria,omitempty"`
	DryRun                bool            `json:"dry_run,omitempty"`
	RecentMessageHours    int             `json:"recent_message_hours,omitempty"`
	CreatedBy             string          `json:"created_by,omitempty"`
	Error                 string          `json:"error,omitempty"`
	FailedAt              *time.Time      `json:"failed_at,omitempty"`
}

type Campaign struct {
	ID                 string           `db:"id" json:"id"`
	Name               string           `db:"name" json:"name"`
	Status             string           `db:"status" json:"status"`
	MessagesSent       int              `db:"messages_sent" json:"messages_sent"`
	MessagesFailed     int              `db:"messages_failed" json:"messages_failed"`
	TotalRecipients    int              `db:"total_recipients" json:"total_recipients"`
	EstimatedCostCents int              `db:"estimated_cost_cents" json:"estimated_cost_cents"`
	ScheduledAt        *time.Time       `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Timezone           string           `db:"timezone" json:"timezone,omitempty"`
	ScheduledLocal     string           `db:"scheduled_local" json:"scheduled_local,omitempty"`
	LockOwner          *string          `db:"lock_owner" json:"-"`
	LeaseExpiresAt     *time.Time       `db:"lease_expires_at" json:"-"`
	StartedAt          *time.Time       `db:"started_at" json:"started_at,omitempty"`
	CompletedAt        *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          *time.Time       `db:"updated_at" json:"updated_at,omitempty"`
	Metadata           CampaignMetadata `db:"metadata" json:"metadata"`
}

// Remaining returns the snapshot recipients not yet attempted, preserving
// intake order.
func (c *Campaign) Remaining() []Recipient {
	attempted := make(map[string]struct{}, len(c.Metadata.AttemptedRecipientIDs))
	for _, id := range c.Metadata.AttemptedRecipientIDs {
		attempted[id] = struct{}{}
	}
	var remaining []Recipient
	for _, r := range c.Metadata.RecipientData {
		if _, ok := attempted[r.PersonID]; !ok {
			remaining = append(remaining, r)
		}
	}
	return remaining
}
