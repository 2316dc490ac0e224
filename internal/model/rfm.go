// internal/model/rfm.go
package model

import "time"

// RFMScore is a recency/frequency/monetary engagement score for one person.
// Each component is 1-5; the segment code maps each component to H/M/L.
type RFMScore struct {
	PersonID              string    `db:"person_id" json:"person_id"`
	RecencyScore          int       `db:"recency_score" json:"recency_score"`
	FrequencyScore        int       `db:"frequency_score" json:"frequency_score"`
	MonetaryScore         int       `db:"monetary_score" json:"monetary_score"`
	TotalScore            int       `db:"total_score" json:"total_score"`
	Segment               string    `db:"segment" json:"segment"`
	SegmentCode           string    `db:"segment_code" json:"segment_code"`
	DaysSinceLastActivity int       `db:"days_since_last_activity" json:"days_since_last_activity"`
	TotalActivities       int       `db:"total_activities" json:"total_activities"`
	TotalSpent            float64   `db:"total_spent" json:"total_spent"`
	CalculatedAt          time.Time `db:"calculated_at" json:"calculated_at"`
}

// PersonActivity aggregates the raw engagement signals RFM scoring needs,
// over the lookback window: event attendance, votes, bids, QR scans and
// event registrations.
type PersonActivity struct {
	PersonID        string
	LastActivity    *time.Time
	TotalActivities int
	// TotalSpent is the sum of the person's highest bid per lot, not the sum
	// of all bids.
	TotalSpent float64
}
