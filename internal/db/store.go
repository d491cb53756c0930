package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/reeferwatch/backend/internal/models"
)

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const technicianColumns = `id, name, skills, base_lat, base_lng, duty_status, category, average_rating, created_at`

func scanTechnician(row pgx.Row) (models.Technician, error) {
	var (
		t       models.Technician
		baseLat *float64
		baseLng *float64
		rating  *float64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Skills, &baseLat, &baseLng, &t.DutyStatus, &t.Category, &rating, &t.CreatedAt); err != nil {
		return models.Technician{}, err
	}
	if baseLat != nil && baseLng != nil {
		t.BaseLocation = &models.Location{Lat: *baseLat, Lng: *baseLng}
	}
	if rating != nil {
		t.AverageRating = *rating
	}
	return t, nil
}

func (s *Store) ListTechnicians(ctx context.Context) ([]models.Technician, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+technicianColumns+` FROM technicians ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Technician
	for rows.Next() {
		t, err := scanTechnician(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTechnician(ctx context.Context, id string) (*models.Technician, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+technicianColumns+` FROM technicians WHERE id = $1`, id)
	t, err := scanTechnician(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

const serviceRequestColumns = `id, request_number, container_id, client_id, priority, status,
	issue_description, required_parts, estimated_duration,
	assigned_technician_id, assigned_by, assigned_at,
	scheduled_date, scheduled_time_window, requested_at, started_at, completed_at`

func scanServiceRequest(row pgx.Row) (models.ServiceRequest, error) {
	var (
		r          models.ServiceRequest
		assignedBy *string
		window     *string
	)
	if err := row.Scan(
		&r.ID, &r.RequestNumber, &r.ContainerID, &r.ClientID, &r.Priority, &r.Status,
		&r.IssueDescription, &r.RequiredParts, &r.EstimatedDuration,
		&r.AssignedTechnicianID, &assignedBy, &r.AssignedAt,
		&r.ScheduledDate, &window, &r.RequestedAt, &r.StartedAt, &r.CompletedAt,
	); err != nil {
		return models.ServiceRequest{}, err
	}
	if assignedBy != nil {
		r.AssignedBy = *assignedBy
	}
	if window != nil {
		r.ScheduledTimeWindow = *window
	}
	return r, nil
}

func (s *Store) collectServiceRequests(ctx context.Context, query string, args ...any) ([]models.ServiceRequest, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ServiceRequest
	for rows.Next() {
		r, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) ListServiceRequests(ctx context.Context) ([]models.ServiceRequest, error) {
	return s.collectServiceRequests(ctx,
		`SELECT `+serviceRequestColumns+` FROM service_requests ORDER BY requested_at ASC`)
}

func (s *Store) ListServiceRequestsByStatus(ctx context.Context, status string) ([]models.ServiceRequest, error) {
	return s.collectServiceRequests(ctx,
		`SELECT `+serviceRequestColumns+` FROM service_requests WHERE status = $1 ORDER BY requested_at ASC`,
		status)
}

// ListUnassignedServiceRequests returns requests that can still be picked up
// by the scheduler: pending or scheduled, no technician, and no recorded
// actual start or end, oldest first.
func (s *Store) ListUnassignedServiceRequests(ctx context.Context) ([]models.ServiceRequest, error) {
	return s.collectServiceRequests(ctx,
		`SELECT `+serviceRequestColumns+` FROM service_requests
		 WHERE status IN ('pending', 'scheduled')
		   AND assigned_technician_id IS NULL
		   AND started_at IS NULL
		   AND completed_at IS NULL
		 ORDER BY requested_at ASC`)
}

func (s *Store) GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE id = $1`, id)
	r, err := scanServiceRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// GetTechnicianSchedule returns the technician's service requests scheduled
// on the given calendar day, regardless of status.
func (s *Store) GetTechnicianSchedule(ctx context.Context, technicianID string, day time.Time) ([]models.ServiceRequest, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return s.collectServiceRequests(ctx,
		`SELECT `+serviceRequestColumns+` FROM service_requests
		 WHERE assigned_technician_id = $1
		   AND scheduled_date >= $2 AND scheduled_date < $3
		 ORDER BY scheduled_date ASC`,
		technicianID, start, end)
}

// ListServiceRequestsByTechnician returns every request ever assigned to the
// technician, oldest first.
func (s *Store) ListServiceRequestsByTechnician(ctx context.Context, technicianID string) ([]models.ServiceRequest, error) {
	return s.collectServiceRequests(ctx,
		`SELECT `+serviceRequestColumns+` FROM service_requests
		 WHERE assigned_technician_id = $1
		 ORDER BY requested_at ASC`,
		technicianID)
}

func (s *Store) GetContainer(ctx context.Context, id string) (*models.Container, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT id, code, type, loc_lat, loc_lng FROM containers WHERE id = $1`, id)

	var (
		c      models.Container
		locLat *float64
		locLng *float64
	)
	if err := row.Scan(&c.ID, &c.Code, &c.Type, &locLat, &locLng); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	if locLat != nil && locLng != nil {
		c.CurrentLocation = &models.Location{Lat: *locLat, Lng: *locLng}
	}
	return &c, nil
}

// AssignServiceRequest commits an assignment: status, assignment fields and
// scheduling fields change in one transaction. The update is conditional on
// the request still being unassigned, so concurrent schedulers cannot
// double-book the same request.
func (s *Store) AssignServiceRequest(ctx context.Context, id, technicianID string, date time.Time, window, assignedBy string) (*models.ServiceRequest, error) {
	var updated models.ServiceRequest
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			UPDATE service_requests
			SET status = 'scheduled',
			    assigned_technician_id = $1,
			    assigned_by = $2,
			    assigned_at = NOW(),
			    scheduled_date = $3,
			    scheduled_time_window = $4
			WHERE id = $5
			  AND assigned_technician_id IS NULL
			  AND status IN ('pending', 'scheduled')
			RETURNING `+serviceRequestColumns, technicianID, assignedBy, date, window, id)

		r, err := scanServiceRequest(row)
		if err == nil {
			updated = r
			return nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		// The guard rejected the update: distinguish missing from taken.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM service_requests WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.ErrNotFound
		}
		return models.ErrAlreadyAssigned
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
