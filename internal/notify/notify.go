package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Event describes a committed assignment. The hook fires after the commit,
// so consumers may rely on the store already reflecting it.
type Event struct {
	RequestID      string    `json:"request_id"`
	RequestNumber  string    `json:"request_number"`
	TechnicianID   string    `json:"technician_id"`
	TechnicianName string    `json:"technician_name"`
	ScheduledDate  time.Time `json:"scheduled_date"`
	TimeWindow     string    `json:"time_window"`
}

// Notifier delivers an "assignment happened" call-out. Implementations are
// best-effort collaborators; the engine never lets their failures affect
// the assignment outcome.
type Notifier interface {
	NotifyAssignment(ctx context.Context, ev Event) error
}

// LogNotifier writes the event to the log. It is the default hook when no
// webhook is configured.
type LogNotifier struct {
	Logger zerolog.Logger
}

func (n LogNotifier) NotifyAssignment(_ context.Context, ev Event) error {
	n.Logger.Info().
		Str("request_id", ev.RequestID).
		Str("technician_id", ev.TechnicianID).
		Time("scheduled_date", ev.ScheduledDate).
		Str("time_window", ev.TimeWindow).
		Msg("assignment notification")
	return nil
}
