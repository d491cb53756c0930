package service

import (
	"context"
	"time"

	"github.com/reeferwatch/backend/internal/models"
)

// DistributeBatch assigns a list of requests one at a time, oldest first.
// Scores are recomputed against live store state after every commit, so a
// technician who just received work carries that load into the next pick.
// One request's failure never blocks the rest of the batch.
func (s *SchedulerService) DistributeBatch(ctx context.Context, requestIDs []string) (*models.BatchResult, error) {
	start := time.Now()
	defer func() {
		s.Metrics.ObserveOperation("distribute_batch", time.Since(start))
	}()

	ids := requestIDs
	if len(ids) == 0 {
		pending, err := s.Store.ListUnassignedServiceRequests(ctx)
		if err != nil {
			return nil, fetchFailed("REQUESTS", err)
		}
		// Already ordered by requested-at.
		for _, r := range pending {
			ids = append(ids, r.ID)
		}
	}

	result := &models.BatchResult{
		Outcomes:     make([]models.AssignOutcome, 0, len(ids)),
		Distribution: map[string]int{},
	}

	assigned := 0
	for _, id := range ids {
		outcome, err := s.assignOne(ctx, id)
		if err != nil {
			// Isolate the failure: record it and keep going.
			s.Logger.Error().Err(err).Str("request_id", id).Msg("batch assignment failed")
			s.Metrics.CountAssignment("distribute_batch", "error")
			result.Outcomes = append(result.Outcomes, models.AssignOutcome{
				RequestID:  id,
				ReasonCode: "STORE_ERROR",
				ReasonText: err.Error(),
			})
			continue
		}
		result.Outcomes = append(result.Outcomes, *outcome)
		if outcome.Assigned {
			s.Metrics.CountAssignment("distribute_batch", "assigned")
			result.Distribution[outcome.TechnicianID]++
			assigned++
		} else {
			s.Metrics.CountAssignment("distribute_batch", "skipped")
		}
	}

	s.Logger.Info().
		Int("requests", len(ids)).
		Int("assigned", assigned).
		Msg("batch distribution finished")
	return result, nil
}
