package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/reeferwatch/backend/internal/models"
)

// RunBucketSchedule round-robins every unassigned service request across the
// internal technician pool, capping each technician at the daily job
// capacity and spilling over to the next day with free capacity. The pool
// order and the cursor are explicit, so two runs over the same store
// snapshot produce the same mapping.
func (s *SchedulerService) RunBucketSchedule(ctx context.Context) (*models.BucketResult, error) {
	start := time.Now()
	defer func() {
		s.Metrics.ObserveOperation("bucket_schedule", time.Since(start))
	}()

	technicians, err := s.Store.ListTechnicians(ctx)
	if err != nil {
		return nil, fetchFailed("TECHNICIANS", err)
	}
	if len(technicians) == 0 {
		return nil, ErrNoTechnicians
	}

	elig := FilterBucketEligible(technicians)
	if len(elig.Eligible) == 0 {
		return nil, ErrNoInternalTechnicians
	}
	pool := elig.Eligible

	requests, err := s.Store.ListUnassignedServiceRequests(ctx)
	if err != nil {
		return nil, fetchFailed("REQUESTS", err)
	}
	if len(requests) == 0 {
		return nil, ErrNoUnassignedRequests
	}
	sort.SliceStable(requests, func(i, j int) bool {
		return requests[i].RequestedAt.Before(requests[j].RequestedAt)
	})

	result := &models.BucketResult{RunID: uuid.NewString()}
	newAssignments := map[string]int{}
	today := s.clock()
	cursor := 0

	for i := range requests {
		req := requests[i]
		tech := pool[cursor%len(pool)]
		cursor++

		day, err := s.nextAvailableDate(ctx, tech.ID, today)
		if err != nil {
			s.Logger.Error().Err(err).Str("request_id", req.ID).Msg("capacity lookup failed")
			result.Skipped = append(result.Skipped, models.BucketSkip{
				RequestID:  req.ID,
				ReasonCode: "STORE_ERROR",
				ReasonText: err.Error(),
			})
			continue
		}

		updated, err := s.Store.AssignServiceRequest(ctx, req.ID, tech.ID, day, timeWindowOrDefault(&req), "AUTO")
		if err != nil {
			code, text := "STORE_ERROR", err.Error()
			if errors.Is(err, models.ErrAlreadyAssigned) {
				code, text = "ALREADY_ASSIGNED", "Service request already has a technician"
			}
			s.Logger.Warn().Err(err).Str("request_id", req.ID).Msg("bucket assignment skipped")
			s.Metrics.CountAssignment("bucket_schedule", "skipped")
			result.Skipped = append(result.Skipped, models.BucketSkip{
				RequestID:  req.ID,
				ReasonCode: code,
				ReasonText: text,
			})
			continue
		}

		s.Metrics.CountAssignment("bucket_schedule", "assigned")
		newAssignments[tech.ID]++
		result.Assigned = append(result.Assigned, models.BucketAssignment{
			RequestID:     updated.ID,
			RequestNumber: updated.RequestNumber,
			TechnicianID:  tech.ID,
			ScheduledDate: day,
		})
		s.notifyAssignment(updated, tech)
	}

	// The per-technician totals are read back fresh so the summary reflects
	// the store, not an in-memory tally.
	for _, tech := range pool {
		total, err := s.totalActiveLoad(ctx, tech.ID)
		if err != nil {
			s.Logger.Warn().Err(err).Str("technician_id", tech.ID).Msg("summary load query failed")
		}
		result.Summary = append(result.Summary, models.TechnicianSummary{
			TechnicianID:   tech.ID,
			Name:           tech.Name,
			NewAssignments: newAssignments[tech.ID],
			TotalActive:    total,
		})
	}

	s.Logger.Info().
		Str("run_id", result.RunID).
		Int("assigned", len(result.Assigned)).
		Int("skipped", len(result.Skipped)).
		Int("pool", len(pool)).
		Msg("bucket schedule run finished")
	return result, nil
}

// nextAvailableDate scans forward from today for the first day on which the
// technician's live job count is below capacity. If every day inside the
// lookahead window is full, the last scanned day is used rather than
// failing the request.
func (s *SchedulerService) nextAvailableDate(ctx context.Context, technicianID string, from time.Time) (time.Time, error) {
	p := s.policy()
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	for offset := 0; offset < p.LookaheadDays; offset++ {
		candidate := day.AddDate(0, 0, offset)
		n, err := s.ActiveJobCount(ctx, technicianID, candidate)
		if err != nil {
			return time.Time{}, err
		}
		if n < p.DailyJobCapacity {
			return candidate, nil
		}
	}
	return day.AddDate(0, 0, p.LookaheadDays), nil
}
