package models

import (
	"errors"
	"time"
)

// Sentinel errors shared by the repository implementation and the
// scheduling engine.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyAssigned = errors.New("service request already assigned")
)

// Duty statuses for technicians.
const (
	DutyActive   = "active"
	DutyOffDuty  = "off_duty"
	DutyInactive = "inactive"
)

// Technician categories.
const (
	CategoryInternal   = "internal"
	CategoryThirdParty = "third_party"
)

// Service request statuses.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Technician struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Skills        []string  `json:"skills"`
	BaseLocation  *Location `json:"base_location"`
	DutyStatus    string    `json:"duty_status"`
	Category      string    `json:"category"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

type ServiceRequest struct {
	ID                   string     `json:"id"`
	RequestNumber        string     `json:"request_number"`
	ContainerID          string     `json:"container_id"`
	ClientID             string     `json:"client_id"`
	Priority             string     `json:"priority"`
	Status               string     `json:"status"`
	IssueDescription     string     `json:"issue_description"`
	RequiredParts        []string   `json:"required_parts"`
	EstimatedDuration    int        `json:"estimated_duration"`
	AssignedTechnicianID *string    `json:"assigned_technician_id"`
	AssignedBy           string     `json:"assigned_by,omitempty"`
	AssignedAt           *time.Time `json:"assigned_at"`
	ScheduledDate        *time.Time `json:"scheduled_date"`
	ScheduledTimeWindow  string     `json:"scheduled_time_window,omitempty"`
	RequestedAt          time.Time  `json:"requested_at"`
	StartedAt            *time.Time `json:"started_at"`
	CompletedAt          *time.Time `json:"completed_at"`
}

// Terminal reports whether the request can no longer receive work.
func (r ServiceRequest) Terminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusCancelled
}

type Container struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	Type            string    `json:"type"`
	CurrentLocation *Location `json:"current_location"`
}

// AssignmentScore is the per-candidate scoring breakdown. Produced during
// a scoring pass, never persisted.
type AssignmentScore struct {
	Technician    Technician `json:"technician"`
	Score         float64    `json:"score"`
	DayJobs       int        `json:"day_jobs"`
	DistanceKm    float64    `json:"distance_km"`
	SkillMismatch bool       `json:"skill_mismatch"`
	Rating        float64    `json:"rating"`
}

// AssignOutcome is the result of assigning a single service request.
// Business-level non-assignment is reported here with a reason code,
// never as an error.
type AssignOutcome struct {
	RequestID    string          `json:"request_id"`
	Assigned     bool            `json:"assigned"`
	TechnicianID string          `json:"technician_id,omitempty"`
	Request      *ServiceRequest `json:"request,omitempty"`
	ReasonCode   string          `json:"reason_code,omitempty"`
	ReasonText   string          `json:"reason_text,omitempty"`
}

type BatchResult struct {
	Outcomes     []AssignOutcome `json:"outcomes"`
	Distribution map[string]int  `json:"distribution"`
}

type BucketAssignment struct {
	RequestID     string    `json:"request_id"`
	RequestNumber string    `json:"request_number"`
	TechnicianID  string    `json:"technician_id"`
	ScheduledDate time.Time `json:"scheduled_date"`
}

type BucketSkip struct {
	RequestID  string `json:"request_id"`
	ReasonCode string `json:"reason_code"`
	ReasonText string `json:"reason_text"`
}

type TechnicianSummary struct {
	TechnicianID   string `json:"technician_id"`
	Name           string `json:"name"`
	NewAssignments int    `json:"new_assignments"`
	TotalActive    int    `json:"total_active_jobs"`
}

type BucketResult struct {
	RunID    string              `json:"run_id"`
	Assigned []BucketAssignment  `json:"assigned"`
	Skipped  []BucketSkip        `json:"skipped"`
	Summary  []TechnicianSummary `json:"per_technician_summary"`
}
