package service

import (
	"math"
	"testing"

	"github.com/reeferwatch/backend/internal/models"
)

func TestScoreFormula(t *testing.T) {
	// 3*jobs + 1.5*distance + 10*mismatch - 0.5*rating
	got := Score(2, 10, true, 4)
	want := 3.0*2 + 1.5*10 + 10 - 0.5*4
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestScoreLowerIsBetterForIdleNearbyTech(t *testing.T) {
	busyFar := Score(3, 50, false, 5)
	idleNear := Score(0, 5, false, 0)
	if idleNear >= busyFar {
		t.Fatalf("idle nearby technician must score lower: %f vs %f", idleNear, busyFar)
	}
}

func TestDistanceToKmMissingBasePenalty(t *testing.T) {
	asset := models.Location{Lat: 19.0760, Lng: 72.8777}
	if d := DistanceToKm(asset, nil); d != 999.0 {
		t.Fatalf("expected exactly 999 km penalty, got %f", d)
	}
	if d := DistanceToKm(asset, &asset); d != 0 {
		t.Fatalf("expected 0 km for identical coordinates, got %f", d)
	}
}

// Scenario from the scheduling policy review: A declares no skills (treated
// as a generalist, so the electrical requirement does not flag a mismatch)
// and sits on the asset; B is skilled and rated but a degree of longitude
// away. A must win on raw score.
func TestScoreScenarioGeneralistOnSiteBeatsSkilledFarAway(t *testing.T) {
	scoreA := Score(0, 0, false, 0)
	distB := DistanceToKm(models.Location{Lat: 0, Lng: 0}, &models.Location{Lat: 1, Lng: 0})
	scoreB := Score(0, distB, false, 4)

	if math.Abs(scoreA) > 1e-9 {
		t.Fatalf("expected A to score 0, got %f", scoreA)
	}
	if math.Abs(scoreB-(1.5*distB-2)) > 1e-9 {
		t.Fatalf("unexpected score for B: %f", scoreB)
	}
	if scoreB < 160 || scoreB > 170 {
		t.Fatalf("expected B around 164.8, got %f", scoreB)
	}
	if scoreA >= scoreB {
		t.Fatalf("expected A to win: %f vs %f", scoreA, scoreB)
	}
}
