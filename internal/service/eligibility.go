package service

import (
	"sort"

	"github.com/reeferwatch/backend/internal/models"
)

// EligibilityResult carries the surviving pool plus a typed reason when the
// pool came up empty.
type EligibilityResult struct {
	Eligible   []models.Technician
	ReasonCode string
	ReasonText string
}

// FilterAdHocEligible keeps technicians allowed to receive ad-hoc work:
// anyone not off duty and not inactive. Category is irrelevant here.
func FilterAdHocEligible(technicians []models.Technician) EligibilityResult {
	eligible := make([]models.Technician, 0, len(technicians))
	for _, t := range technicians {
		if t.DutyStatus == models.DutyOffDuty || t.DutyStatus == models.DutyInactive {
			continue
		}
		eligible = append(eligible, t)
	}
	if len(eligible) == 0 {
		return EligibilityResult{
			ReasonCode: "NO_ELIGIBLE_TECHNICIANS",
			ReasonText: "No eligible technicians",
		}
	}
	return EligibilityResult{Eligible: eligible}
}

// FilterBucketEligible builds the pool for the daily round-robin scheduler.
// Explicitly internal technicians are preferred; when nobody is tagged
// internal the pool falls back to everyone except explicit third-party, so
// an unpopulated category field does not starve the pool. Duty status is
// ignored. The pool is stable-sorted by id so round-robin order is
// reproducible.
func FilterBucketEligible(technicians []models.Technician) EligibilityResult {
	var internal, nonThirdParty []models.Technician
	for _, t := range technicians {
		if t.Category == models.CategoryThirdParty {
			continue
		}
		nonThirdParty = append(nonThirdParty, t)
		if t.Category == models.CategoryInternal {
			internal = append(internal, t)
		}
	}

	pool := internal
	if len(pool) == 0 {
		pool = nonThirdParty
	}
	if len(pool) == 0 {
		return EligibilityResult{
			ReasonCode: ErrNoInternalTechnicians.Code,
			ReasonText: ErrNoInternalTechnicians.Message,
		}
	}

	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return EligibilityResult{Eligible: pool}
}
