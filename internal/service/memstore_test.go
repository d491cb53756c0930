package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/notify"
)

// failingNotifier counts delivery attempts and always errors.
type failingNotifier struct{ calls int }

func (f *failingNotifier) NotifyAssignment(context.Context, notify.Event) error {
	f.calls++
	return errors.New("delivery unavailable")
}

// memStore is an in-memory Repository used by the engine tests. It applies
// the same guards as the SQL store, including the conditional assignment
// commit.
type memStore struct {
	mu         sync.Mutex
	techs      []models.Technician
	requests   map[string]*models.ServiceRequest
	containers map[string]*models.Container

	failTechnicians error
	failRequests    error
}

func newMemStore() *memStore {
	return &memStore{
		requests:   map[string]*models.ServiceRequest{},
		containers: map[string]*models.Container{},
	}
}

func (m *memStore) addTechnician(t models.Technician) {
	m.techs = append(m.techs, t)
}

func (m *memStore) addContainer(c models.Container) {
	m.containers[c.ID] = &c
}

func (m *memStore) addRequest(r models.ServiceRequest) {
	m.requests[r.ID] = &r
}

func (m *memStore) ListTechnicians(_ context.Context) ([]models.Technician, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTechnicians != nil {
		return nil, m.failTechnicians
	}
	out := append([]models.Technician(nil), m.techs...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetServiceRequest(_ context.Context, id string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListUnassignedServiceRequests(_ context.Context) ([]models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRequests != nil {
		return nil, m.failRequests
	}
	var out []models.ServiceRequest
	for _, r := range m.requests {
		if r.Status != models.StatusPending && r.Status != models.StatusScheduled {
			continue
		}
		if r.AssignedTechnicianID != nil || r.StartedAt != nil || r.CompletedAt != nil {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *memStore) ListServiceRequestsByTechnician(_ context.Context, technicianID string) ([]models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ServiceRequest
	for _, r := range m.requests {
		if r.AssignedTechnicianID != nil && *r.AssignedTechnicianID == technicianID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *memStore) GetTechnicianSchedule(_ context.Context, technicianID string, day time.Time) ([]models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ServiceRequest
	for _, r := range m.requests {
		if r.AssignedTechnicianID == nil || *r.AssignedTechnicianID != technicianID || r.ScheduledDate == nil {
			continue
		}
		d := *r.ScheduledDate
		if d.Year() == day.Year() && d.Month() == day.Month() && d.Day() == day.Day() {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.Before(out[j].RequestedAt) })
	return out, nil
}

func (m *memStore) GetContainer(_ context.Context, id string) (*models.Container, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.containers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) AssignServiceRequest(_ context.Context, id, technicianID string, date time.Time, window, assignedBy string) (*models.ServiceRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if r.AssignedTechnicianID != nil || (r.Status != models.StatusPending && r.Status != models.StatusScheduled) {
		return nil, models.ErrAlreadyAssigned
	}
	now := time.Now()
	r.Status = models.StatusScheduled
	r.AssignedTechnicianID = &technicianID
	r.AssignedBy = assignedBy
	r.AssignedAt = &now
	r.ScheduledDate = &date
	r.ScheduledTimeWindow = window
	cp := *r
	return &cp, nil
}
