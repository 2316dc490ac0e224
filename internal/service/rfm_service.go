// internal/service/rfm_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	appErrors "github.com/artbattle/sms-marketing-backend/internal/errors"
	"github.com/artbattle/sms-marketing-backend/internal/repository"
)

const (
	// RFMCacheTTL is how long a cached score stays fresh. Staleness is the
	// only recompute trigger; there is no write-through invalidation.
	RFMCacheTTL = 30 * time.Minute

	// DefaultRFMBatchSize is how many people are recomputed in parallel
	// between progress events.
	DefaultRFMBatchSize = 50

	// rfmLookback bounds the activity history considered for scoring.
	rfmLookback = 5 * 365 * 24 * time.Hour

	// maxScoreErrorDetails caps the error sample in the terminal event.
	maxScoreErrorDetails = 10
)

type ScoreError struct {
	PersonID string `json:"person_id"`
	Error    string `json:"error"`
}

// ScoreEvent is one streamed frame: progress frames while batches run, then
// exactly one terminal complete or error frame.
type ScoreEvent struct {
	Type            string       `json:"type"`
	Success         *bool        `json:"success,omitempty"`
	TotalRequested  int          `json:"total_requested"`
	NeededUpdates   int          `json:"needed_updates"`
	Processed       int          `json:"processed"`
	Errors          int          `json:"errors"`
	ProgressPercent int          `json:"progress_percent"`
	BatchCompleted  int          `json:"batch_completed,omitempty"`
	Status          string       `json:"status,omitempty"`
	ErrorDetails    []ScoreError `json:"error_details,omitempty"`
	CompletionRate  string       `json:"completion_rate,omitempty"`
	Error           string       `json:"error,omitempty"`
}

// NoWorkResult is the plain JSON response when every requested score is
// already fresh and no stream is opened.
type NoWorkResult struct {
	Success        bool   `json:"success"`
	TotalRequested int    `json:"total_requested"`
	NeededUpdates  int    `json:"needed_updates"`
	Processed      int    `json:"processed"`
	Errors         int    `json:"errors"`
	Message        string `json:"message"`
}

// RFMService recomputes recency/frequency/monetary scores with a
// cache-or-recompute decision per person.
type RFMService struct {
	CacheRepo    repository.RFMCacheRepositoryInterface
	ActivityRepo repository.PersonActivityRepositoryInterface
	BatchSize    int
	Now          func() time.Time
}

func (s *RFMService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *RFMService) batchSize() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return DefaultRFMBatchSize
}

// Plan decides which requested ids need (re)computation: everything on a
// force refresh, otherwise ids without a cache entry or past the TTL.
func (s *RFMService) Plan(personIDs []string, forceRefresh bool) ([]string, error) {
	if len(personIDs) == 0 {
		return nil, appErrors.NewValidation("person_ids array is required and must not be empty")
	}
	if forceRefresh {
		needed := make([]string, len(personIDs))
		copy(needed, personIDs)
		return needed, nil
	}

	calculatedAt, err := s.CacheRepo.GetCalculatedAt(personIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var needed []string
	for _, id := range personIDs {
		at, ok := calculatedAt[id]
		if !ok || now.Sub(at) >= RFMCacheTTL {
			needed = append(needed, id)
		}
	}
	return needed, nil
}

// ComputeScore recalculates one person's score and upserts the cache entry.
func (s *RFMService) ComputeScore(personID string) error {
	now := s.now()
	activity, err := s.ActivityRepo.GetActivity(personID, now.Add(-rfmLookback))
	if err != nil {
		return fmt.Errorf("RFM scoring failed for person %s: %w", personID, err)
	}
	score := scoreFromActivity(activity, now)
	if err := s.CacheRepo.Upsert(score); err != nil {
		return fmt.Errorf("failed to cache RFM score for person %s: %w", personID, err)
	}
	return nil
}

// Run processes the needed ids in batches, people within a batch in
// parallel, emitting progress after every batch and one terminal event. A
// single person's failure is recorded and never stops the stream. When emit
// fails (caller gone) or ctx is done, no further events are produced; the
// in-flight batch is left to finish.
func (s *RFMService) Run(ctx context.Context, totalRequested int, needed []string, emit func(ScoreEvent) error) {
	if err := emit(ScoreEvent{
		Type:           "progress",
		TotalRequested: totalRequested,
		NeededUpdates:  len(needed),
		Status:         "starting",
	}); err != nil {
		return
	}

	var mu sync.Mutex
	processed := 0
	errorCount := 0
	var errorDetails []ScoreError

	batchSize := s.batchSize()
	for i := 0; i < len(needed); i += batchSize {
		end := i + batchSize
		if end > len(needed) {
			end = len(needed)
		}
		batch := needed[i:end]

		var wg sync.WaitGroup
		for _, personID := range batch {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				err := s.ComputeScore(id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errorCount++
					errorDetails = append(errorDetails, ScoreError{PersonID: id, Error: err.Error()})
					log.Printf("⚠️ error processing RFM for person %s: %v", id, err)
					return
				}
				processed++
			}(personID)
		}
		wg.Wait()

		if ctx.Err() != nil {
			return
		}

		percent := end * 100 / len(needed)
		done := end >= len(needed)
		status := "processing"
		if done {
			status = "completed"
		}
		mu.Lock()
		event := ScoreEvent{
			Type:            "progress",
			TotalRequested:  totalRequested,
			NeededUpdates:   len(needed),
			Processed:       processed,
			Errors:          errorCount,
			ProgressPercent: percent,
			BatchCompleted:  end,
			Status:          status,
		}
		mu.Unlock()
		if err := emit(event); err != nil {
			return
		}
	}

	capped := errorDetails
	if len(capped) > maxScoreErrorDetails {
		capped = capped[:maxScoreErrorDetails]
	}
	success := true
	completionRate := "100.0"
	if len(needed) > 0 {
		completionRate = fmt.Sprintf("%.1f", float64(processed)/float64(len(needed))*100)
	}
	_ = emit(ScoreEvent{
		Type:            "complete",
		Success:         &success,
		TotalRequested:  totalRequested,
		NeededUpdates:   len(needed),
		Processed:       processed,
		Errors:          errorCount,
		ProgressPercent: 100,
		Status:          "completed",
		ErrorDetails:    capped,
		CompletionRate:  completionRate,
	})
}
