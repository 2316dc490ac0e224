package repository

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/artbattle/sms-marketing-backend/internal/model"
)

type RFMCacheRepositoryInterface interface {
	GetCalculatedAt(personIDs []string) (map[string]time.Time, error)
	Upsert(score *model.RFMScore) error
}

type RFMCacheRepository struct {
	DB *sql.DB
}

// GetCalculatedAt returns the cache timestamp per person for the ids that
// have an entry. Queries are chunked under the same row-limit ceiling as
// contact resolution.
func (r *RFMCacheRepository) GetCalculatedAt(personIDs []string) (map[string]time.Time, error) {
	result := make(map[string]time.Time, len(personIDs))
	for _, chunk := range chunkIDs(personIDs, MaxIDsPerQuery) {
		rows, err := r.DB.Query(`
            SELECT person_id, calculated_at
            FROM rfm_score_cache
            WHERE person_id = ANY($1)
        `, pq.Array(chunk))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			var at time.Time
			if err := rows.Scan(&id, &at); err != nil {
				rows.Close()
				return nil, err
			}
			result[id] = at
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return result, nil
}

func (r *RFMCacheRepository) Upsert(score *model.RFMScore) error {
	query := `
        INSERT INTO rfm_score_cache
            (person_id, recency_score, frequency_score, monetary_score, total_score,
             segment, segment_code, days_since_last_activity, total_activities,
             total_spent, calculated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (person_id) DO UPDATE SET
            recency_score = EXCLUDED.recency_score,
            frequency_score = EXCLUDED.frequency_score,
            monetary_score = EXCLUDED.monetary_score,
            total_score = EXCLUDED.total_score,
            segment = EXCLUDED.segment,
            segment_code = EXCLUDED.segment_code,
            days_since_last_activity = EXCLUDED.days_since_last_activity,
            total_activities = EXCLUDED.total_activities,
            total_spent = EXCLUDED.total_spent,
            calculated_at = EXCLUDED.calculated_at
    `
	_, err := r.DB.Exec(query,
		score.PersonID, score.RecencyScore, score.FrequencyScore, score.MonetaryScore,
		score.TotalScore, score.Segment, score.SegmentCode, score.DaysSinceLastActivity,
		score.TotalActivities, score.TotalSpent, score.CalculatedAt,
	)
	return err
}

var _ RFMCacheRepositoryInterface = (*RFMCacheRepository)(nil)
