package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/reeferwatch/backend/internal/metrics"
	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/notify"
	"github.com/reeferwatch/backend/internal/skills"
	"github.com/reeferwatch/backend/internal/utils"
)

// Repository is the read/write contract the engine needs from the
// work-order store. *db.Store satisfies it; tests use an in-memory fake.
type Repository interface {
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListUnassignedServiceRequests(ctx context.Context) ([]models.ServiceRequest, error)
	ListServiceRequestsByTechnician(ctx context.Context, technicianID string) ([]models.ServiceRequest, error)
	GetTechnicianSchedule(ctx context.Context, technicianID string, day time.Time) ([]models.ServiceRequest, error)
	GetContainer(ctx context.Context, id string) (*models.Container, error)
	AssignServiceRequest(ctx context.Context, id, technicianID string, date time.Time, window, assignedBy string) (*models.ServiceRequest, error)
}

// Policy holds the scheduling knobs that are configuration, not code.
type Policy struct {
	DailyJobCapacity     int
	LookaheadDays        int
	DefaultAssetLocation models.Location
}

func (p Policy) withDefaults() Policy {
	if p.DailyJobCapacity <= 0 {
		p.DailyJobCapacity = 3
	}
	if p.LookaheadDays <= 0 {
		p.LookaheadDays = 30
	}
	if p.DefaultAssetLocation == (models.Location{}) {
		p.DefaultAssetLocation = models.Location{Lat: 19.0760, Lng: 72.8777}
	}
	return p
}

// Error is a typed operation failure with a stable machine-readable code
// and an HTTP-style status hint for the caller.
type Error struct {
	Code    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrNoTechnicians = &Error{
		Code:    "NO_TECHNICIANS_FOUND",
		Status:  http.StatusNotFound,
		Message: "No technicians in the roster",
	}
	ErrNoInternalTechnicians = &Error{
		Code:    "NO_INTERNAL_TECHNICIANS",
		Status:  http.StatusNotFound,
		Message: "No internal technicians available for scheduling",
	}
	ErrNoUnassignedRequests = &Error{
		Code:    "NO_UNASSIGNED_SERVICE_REQUESTS",
		Status:  http.StatusNotFound,
		Message: "No unassigned service requests found",
	}
)

func fetchFailed(kind string, err error) *Error {
	return &Error{
		Code:    "FETCH_" + kind + "_FAILED",
		Status:  http.StatusInternalServerError,
		Message: err.Error(),
	}
}

// SchedulerService decides which technician performs each open service
// request and when. All operations run their steps sequentially; the batch
// and bucket paths deliberately re-read live store state between commits.
type SchedulerService struct {
	Store    Repository
	Skills   skills.Table
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
	Policy   Policy
	Now      func() time.Time
}

func (s *SchedulerService) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *SchedulerService) skillTable() skills.Table {
	if s.Skills != nil {
		return s.Skills
	}
	return skills.DefaultTable()
}

func (s *SchedulerService) policy() Policy {
	return s.Policy.withDefaults()
}

// notifyAssignment is best-effort: the commit already happened, so hook
// failures are logged and dropped.
func (s *SchedulerService) notifyAssignment(req *models.ServiceRequest, tech models.Technician) {
	if s.Notifier == nil || req == nil || req.ScheduledDate == nil {
		return
	}
	number := req.RequestNumber
	if number == "" {
		// Records imported before numbering was introduced still get a
		// readable label in the notification.
		number = utils.RequestNumber(s.clock(), 0)
	}
	ev := notify.Event{
		RequestID:      req.ID,
		RequestNumber:  number,
		TechnicianID:   tech.ID,
		TechnicianName: tech.Name,
		ScheduledDate:  *req.ScheduledDate,
		TimeWindow:     req.ScheduledTimeWindow,
	}
	if err := s.Notifier.NotifyAssignment(context.Background(), ev); err != nil {
		s.Logger.Warn().Err(err).Str("request_id", req.ID).Msg("assignment notification failed")
	}
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func timeWindowOrDefault(req *models.ServiceRequest) string {
	if req.ScheduledTimeWindow != "" {
		return req.ScheduledTimeWindow
	}
	return "ASAP"
}
