package service

import (
	"context"
	"errors"
	"time"

	"github.com/reeferwatch/backend/internal/models"
)

// AssignOne picks the lowest-scoring eligible technician for one request
// and commits the assignment. Business-level non-assignment comes back as
// a typed outcome; only infrastructure failures return an error.
func (s *SchedulerService) AssignOne(ctx context.Context, requestID string) (*models.AssignOutcome, error) {
	start := time.Now()
	outcome, err := s.assignOne(ctx, requestID)
	s.Metrics.ObserveOperation("assign_one", time.Since(start))
	if err != nil {
		s.Metrics.CountAssignment("assign_one", "error")
		return nil, err
	}
	if outcome.Assigned {
		s.Metrics.CountAssignment("assign_one", "assigned")
	} else {
		s.Metrics.CountAssignment("assign_one", "skipped")
	}
	return outcome, nil
}

func (s *SchedulerService) assignOne(ctx context.Context, requestID string) (*models.AssignOutcome, error) {
	skip := func(code, text string) *models.AssignOutcome {
		return &models.AssignOutcome{RequestID: requestID, ReasonCode: code, ReasonText: text}
	}

	req, err := s.Store.GetServiceRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return skip("SERVICE_REQUEST_NOT_FOUND", "Service request not found"), nil
		}
		return nil, err
	}
	if req.AssignedTechnicianID != nil {
		return skip("ALREADY_ASSIGNED", "Service request already has a technician"), nil
	}

	asset := s.policy().DefaultAssetLocation
	container, err := s.Store.GetContainer(ctx, req.ContainerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return skip("CONTAINER_NOT_FOUND", "Container not found"), nil
		}
		return nil, err
	}
	if container.CurrentLocation != nil {
		asset = *container.CurrentLocation
	} else {
		s.Logger.Debug().Str("container_id", container.ID).Msg("container has no location, using default coordinate")
	}

	technicians, err := s.Store.ListTechnicians(ctx)
	if err != nil {
		return nil, err
	}
	elig := FilterAdHocEligible(technicians)
	if len(elig.Eligible) == 0 {
		return skip(elig.ReasonCode, elig.ReasonText), nil
	}

	targetDate := s.clock()
	if req.ScheduledDate != nil {
		targetDate = *req.ScheduledDate
	}

	// Same-day ad-hoc work never double-books: any live job today is a
	// conflict. Future dates rely on the workload term of the score.
	pool := elig.Eligible
	if sameDay(targetDate, s.clock()) {
		pool = pool[:0:0]
		for _, tech := range elig.Eligible {
			overlap, err := s.HasOverlap(ctx, tech.ID, targetDate)
			if err != nil {
				return nil, err
			}
			if !overlap {
				pool = append(pool, tech)
			}
		}
		if len(pool) == 0 {
			return skip("NO_AVAILABLE_TECHNICIANS", "No available technicians (all overlapping)"), nil
		}
	}

	scores, err := s.scoreCandidates(ctx, pool, req, asset, targetDate)
	if err != nil {
		return nil, err
	}
	best, ok := pickBest(scores)
	if !ok {
		return skip("NO_AVAILABLE_TECHNICIANS", "No available technicians (all overlapping)"), nil
	}

	updated, err := s.Store.AssignServiceRequest(ctx, req.ID, best.Technician.ID, targetDate, timeWindowOrDefault(req), "AUTO")
	if err != nil {
		if errors.Is(err, models.ErrAlreadyAssigned) {
			return skip("ALREADY_ASSIGNED", "Service request already has a technician"), nil
		}
		if errors.Is(err, models.ErrNotFound) {
			return skip("SERVICE_REQUEST_NOT_FOUND", "Service request not found"), nil
		}
		return nil, err
	}

	s.Logger.Info().
		Str("request_id", updated.ID).
		Str("technician_id", best.Technician.ID).
		Float64("score", best.Score).
		Float64("distance_km", best.DistanceKm).
		Int("day_jobs", best.DayJobs).
		Bool("skill_mismatch", best.SkillMismatch).
		Msg("service request assigned")

	s.notifyAssignment(updated, best.Technician)

	return &models.AssignOutcome{
		RequestID:    updated.ID,
		Assigned:     true,
		TechnicianID: best.Technician.ID,
		Request:      updated,
	}, nil
}
