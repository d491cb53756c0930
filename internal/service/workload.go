package service

import (
	"context"
	"time"

	"github.com/reeferwatch/backend/internal/models"
)

// ActiveJobCount counts the technician's work orders scheduled on the given
// day that are still live: not completed, not cancelled, and without a
// recorded actual end time.
func (s *SchedulerService) ActiveJobCount(ctx context.Context, technicianID string, day time.Time) (int, error) {
	schedule, err := s.Store.GetTechnicianSchedule(ctx, technicianID, day)
	if err != nil {
		return 0, err
	}
	return countActive(schedule), nil
}

// HasOverlap reports whether an ad-hoc same-day assignment would collide
// with existing work. Only today counts: any live job today is a conflict,
// while future-dated load is penalized by the scorer instead of excluded.
func (s *SchedulerService) HasOverlap(ctx context.Context, technicianID string, day time.Time) (bool, error) {
	if !sameDay(day, s.clock()) {
		return false, nil
	}
	n, err := s.ActiveJobCount(ctx, technicianID, day)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// totalActiveLoad is the technician's live job count across all dates,
// queried fresh for the bucket run summary.
func (s *SchedulerService) totalActiveLoad(ctx context.Context, technicianID string) (int, error) {
	reqs, err := s.Store.ListServiceRequestsByTechnician(ctx, technicianID)
	if err != nil {
		return 0, err
	}
	return countActive(reqs), nil
}

func countActive(reqs []models.ServiceRequest) int {
	n := 0
	for _, r := range reqs {
		if r.Terminal() || r.CompletedAt != nil {
			continue
		}
		n++
	}
	return n
}
