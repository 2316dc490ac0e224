package repository

import (
	"database/sql"
	"time"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

type PersonActivityRepositoryInterface interface {
	GetActivity(personID string, since time.Time) (*model.PersonActivity, error)
}

// PersonActivityRepository aggregates engagement signals for RFM scoring:
// votes, bids, QR scans and event registrations inside the lookback window.
type PersonActivityRepository struct {
	DB *sql.DB
}

func (r *PersonActivityRepository) GetActivity(personID string, since time.Time) (*model.PersonActivity, error) {
	activity := &model.PersonActivity{PersonID: personID}

	// Unique events attended (votes and registrations), plus every
	// individual vote, bid, scan and registration counts as an activity.
	var uniqueEvents, votes, bids, scans, registrations int
	err := r.DB.QueryRow(`
        SELECT
            (SELECT COUNT(DISTINCT event_id) FROM (
                SELECT event_id FROM votes WHERE person_id=$1 AND timestamp >= $2
                UNION
                SELECT event_id FROM event_registrations WHERE person_id=$1 AND registered_at >= $2
            ) e),
            (SELECT COUNT(*) FROM votes WHERE person_id=$1 AND timestamp >= $2),
            (SELECT COUNT(*) FROM bids WHERE person_id=$1 AND created_at >= $2),
            (SELECT COUNT(*) FROM people_qr_scans WHERE person_id=$1 AND scan_timestamp >= $2),
            (SELECT COUNT(*) FROM event_registrations WHERE person_id=$1 AND registered_at >= $2)
    `, personID, since).Scan(&uniqueEvents, &votes, &bids, &scans, &registrations)
	if err != nil {
		return nil, err
	}
	activity.TotalActivities = uniqueEvents + votes + bids + scans + registrations

	// Most recent activity of any kind.
	var last sql.NullTime
	err = r.DB.QueryRow(`
        SELECT MAX(t) FROM (
            SELECT MAX(timestamp) AS t FROM votes WHERE person_id=$1 AND timestamp >= $2
            UNION ALL
            SELECT MAX(created_at) FROM bids WHERE person_id=$1 AND created_at >= $2
            UNION ALL
            SELECT MAX(scan_timestamp) FROM people_qr_scans WHERE person_id=$1 AND scan_timestamp >= $2
            UNION ALL
            SELECT MAX(registered_at) FROM event_registrations WHERE person_id=$1 AND registered_at >= $2
        ) activity_times
    `, personID, since).Scan(&last)
	if err != nil {
		return nil, err
	}
	if last.Valid {
		activity.LastActivity = &last.Time
	}

	// Monetary value is the sum of the highest bid per lot, not of all bids.
	err = r.DB.QueryRow(`
        SELECT COALESCE(SUM(top), 0) FROM (
            SELECT MAX(amount) AS top FROM bids
            WHERE person_id=$1 AND created_at >= $2
            GROUP BY art_id
        ) highest_per_lot
    `, personID, since).Scan(&activity.TotalSpent)
	if err != nil {
		return nil, err
	}

	return activity, nil
}

var _ PersonActivityRepositoryInterface = (*PersonActivityRepository)(nil)
