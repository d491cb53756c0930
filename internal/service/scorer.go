package service

import (
	"context"
	"time"

	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/skills"
	"github.com/reeferwatch/backend/internal/utils"
)

// Scoring policy. Workload dominates, distance is secondary, a skill
// mismatch is a strong but not absolute penalty, and rating gives a small
// nudge toward well-reviewed technicians. Lower score wins.
const (
	weightWorkload        = 3.0
	weightDistance        = 1.5
	penaltySkillMismatch  = 10.0
	weightRating          = 0.5
	missingBaseDistanceKm = 999.0
)

// Score combines the candidate's components into the single comparable
// number the pickers minimize.
func Score(dayJobs int, distanceKm float64, skillMismatch bool, rating float64) float64 {
	score := weightWorkload*float64(dayJobs) + weightDistance*distanceKm - weightRating*rating
	if skillMismatch {
		score += penaltySkillMismatch
	}
	return score
}

// DistanceToKm returns the distance from the asset to the technician's base,
// or a fixed penalty distance when the technician has no base location.
func DistanceToKm(asset models.Location, base *models.Location) float64 {
	if base == nil {
		return missingBaseDistanceKm
	}
	return utils.HaversineKm(asset.Lat, asset.Lng, base.Lat, base.Lng)
}

// scoreCandidates produces a full scoring pass for one request against the
// given pool. Workload is read live from the store so earlier commits in a
// batch are visible here.
func (s *SchedulerService) scoreCandidates(ctx context.Context, pool []models.Technician, req *models.ServiceRequest, asset models.Location, day time.Time) ([]models.AssignmentScore, error) {
	required := s.skillTable().Infer(req.IssueDescription, req.RequiredParts)

	out := make([]models.AssignmentScore, 0, len(pool))
	for _, tech := range pool {
		jobs, err := s.ActiveJobCount(ctx, tech.ID, day)
		if err != nil {
			return nil, err
		}
		dist := DistanceToKm(asset, tech.BaseLocation)
		mismatch := skills.Mismatch(tech.Skills, required)
		out = append(out, models.AssignmentScore{
			Technician:    tech,
			Score:         Score(jobs, dist, mismatch, tech.AverageRating),
			DayJobs:       jobs,
			DistanceKm:    dist,
			SkillMismatch: mismatch,
			Rating:        tech.AverageRating,
		})
	}
	return out, nil
}

// pickBest returns the lowest-scoring candidate. Ties go to the earliest
// candidate in pool order, which callers keep stable.
func pickBest(scores []models.AssignmentScore) (models.AssignmentScore, bool) {
	if len(scores) == 0 {
		return models.AssignmentScore{}, false
	}
	best := scores[0]
	for _, c := range scores[1:] {
		if c.Score < best.Score {
			best = c
		}
	}
	return best, true
}
