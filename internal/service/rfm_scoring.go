// internal/service/rfm_scoring.go
package service

import (
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

// segmentNames maps an H/M/L recency-frequency-monetary code to a customer
// segment label.
var segmentNames = map[string]string{
	// Tier 1: active customers (high recency)
	"HHH": "Champion",
	"HHM": "Active Collector",
	"HHL": "Event Enthusiast",
	"HMH": "Selective Collector",
	"HMM": "Steady Participant",
	"HML": "Regular Attendee",
	"HLH": "New Collector",
	"HLM": "New Customer",
	"HLL": "Fresh Visitor",

	// Tier 2: reactivation opportunities (medium recency)
	"MHH": "Potential Champion",
	"MHM": "Collector Prospect",
	"MHL": "Engagement Opportunity",
	"MMH": "Collection Potential",
	"MMM": "Re-engagement Target",
	"MML": "Growth Prospect",
	"MLH": "Untapped Collector",
	"MLM": "Activation Candidate",
	"MLL": "Awakening Opportunity",

	// Tier 3: at-risk customers (low recency)
	"LHH": "Past Champion",
	"LHM": "Former Collector",
	"LHL": "Dormant Enthusiast",
	"LMH": "Lost Collector",
	"LMM": "Hibernating",
	"LML": "Cooling Interest",
	"LLH": "One-Time Collector",
	"LLM": "Nearly Lost",
	"LLL": "Lost",
}

func recencyScore(lastActivity *time.Time, now time.Time) int {
	if lastActivity == nil {
		return 1
	}
	daysSince := now.Sub(*lastActivity).Hours() / 24
	switch {
	case daysSince <= 90:
		return 5
	case daysSince <= 180:
		return 4
	case daysSince <= 365:
		return 3
	case daysSince <= 730:
		return 2
	}
	return 1
}

func frequencyScore(totalActivities int) int {
	switch {
	case totalActivities >= 50:
		return 5
	case totalActivities >= 20:
		return 4
	case totalActivities >= 10:
		return 3
	case totalActivities >= 5:
		return 2
	}
	return 1
}

func monetaryScore(totalSpent float64) int {
	switch {
	case totalSpent >= 750:
		return 5
	case totalSpent >= 400:
		return 4
	case totalSpent >= 100:
		return 3
	case totalSpent >= 50:
		return 2
	}
	return 1
}

func rfmRange(score int) string {
	switch {
	case score >= 4:
		return "H"
	case score == 3:
		return "M"
	}
	return "L"
}

// scoreFromActivity converts raw activity aggregates into a scored entry.
func scoreFromActivity(activity *model.PersonActivity, now time.Time) *model.RFMScore {
	daysSince := 999
	if activity.LastActivity != nil {
		daysSince = int(now.Sub(*activity.LastActivity).Hours() / 24)
	}

	r := recencyScore(activity.LastActivity, now)
	f := frequencyScore(activity.TotalActivities)
	m := monetaryScore(activity.TotalSpent)

	code := rfmRange(r) + rfmRange(f) + rfmRange(m)
	segment, ok := segmentNames[code]
	if !ok {
		segment = "Unknown"
	}

	return &model.RFMScore{
		PersonID:              activity.PersonID,
		RecencyScore:          r,
		FrequencyScore:        f,
		MonetaryScore:         m,
		TotalScore:            r + f + m,
		Segment:               segment,
		SegmentCode:           code,
		DaysSinceLastActivity: daysSince,
		TotalActivities:       activity.TotalActivities,
		TotalSpent:            activity.TotalSpent,
		CalculatedAt:          now,
	}
}
