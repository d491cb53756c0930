package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/service"
)

// stubStore implements ReadStore and service.Repository for handler tests.
type stubStore struct {
	pingErr     error
	requests    []models.ServiceRequest
	technicians []models.Technician
	containers  map[string]*models.Container
}

func (s *stubStore) Ping(context.Context) error { return s.pingErr }

func (s *stubStore) ListServiceRequests(context.Context) ([]models.ServiceRequest, error) {
	return s.requests, nil
}

func (s *stubStore) ListServiceRequestsByStatus(_ context.Context, status string) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	for _, r := range s.requests {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) GetServiceRequest(_ context.Context, id string) (*models.ServiceRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID == id {
			r := s.requests[i]
			return &r, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *stubStore) ListTechnicians(context.Context) ([]models.Technician, error) {
	return s.technicians, nil
}

func (s *stubStore) ListUnassignedServiceRequests(context.Context) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	for _, r := range s.requests {
		if r.AssignedTechnicianID == nil && !r.Terminal() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) ListServiceRequestsByTechnician(_ context.Context, technicianID string) ([]models.ServiceRequest, error) {
	var out []models.ServiceRequest
	for _, r := range s.requests {
		if r.AssignedTechnicianID != nil && *r.AssignedTechnicianID == technicianID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) GetTechnicianSchedule(ctx context.Context, technicianID string, day time.Time) ([]models.ServiceRequest, error) {
	all, _ := s.ListServiceRequestsByTechnician(ctx, technicianID)
	var out []models.ServiceRequest
	for _, r := range all {
		if r.ScheduledDate != nil && sameLocalDay(*r.ScheduledDate, day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) GetContainer(_ context.Context, id string) (*models.Container, error) {
	c, ok := s.containers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return c, nil
}

func (s *stubStore) AssignServiceRequest(_ context.Context, id, technicianID string, date time.Time, window, assignedBy string) (*models.ServiceRequest, error) {
	for i := range s.requests {
		if s.requests[i].ID != id {
			continue
		}
		if s.requests[i].AssignedTechnicianID != nil {
			return nil, models.ErrAlreadyAssigned
		}
		now := time.Now()
		s.requests[i].AssignedTechnicianID = &technicianID
		s.requests[i].AssignedBy = assignedBy
		s.requests[i].AssignedAt = &now
		s.requests[i].ScheduledDate = &date
		s.requests[i].ScheduledTimeWindow = window
		s.requests[i].Status = models.StatusScheduled
		r := s.requests[i]
		return &r, nil
	}
	return nil, models.ErrNotFound
}

func sameLocalDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func newTestHandler(store *stubStore) *Handler {
	gin.SetMode(gin.TestMode)
	return &Handler{
		Store: store,
		Scheduler: &service.SchedulerService{
			Store:  store,
			Logger: zerolog.Nop(),
		},
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func perform(h *Handler, register func(*gin.Engine), method, path, body string) *httptest.ResponseRecorder {
	r := gin.New()
	register(r)
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.GET("/healthz", h.Healthz) }, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestHealthzDBDown(t *testing.T) {
	h := newTestHandler(&stubStore{pingErr: errors.New("connection refused")})
	w := perform(h, func(r *gin.Engine) { r.GET("/healthz", h.Healthz) }, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "DB_UNAVAILABLE") {
		t.Fatalf("expected DB_UNAVAILABLE envelope, got %s", w.Body.String())
	}
}

func TestServiceRequestsListFiltersByStatus(t *testing.T) {
	h := newTestHandler(&stubStore{requests: []models.ServiceRequest{
		{ID: "r1", Status: models.StatusPending},
		{ID: "r2", Status: models.StatusCompleted},
	}})
	register := func(r *gin.Engine) { r.GET("/api/service-requests", h.ServiceRequestsList) }

	w := perform(h, register, http.MethodGet, "/api/service-requests?status=pending", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 1 {
		t.Fatalf("expected 1 pending request, got %d", body.Count)
	}

	w = perform(h, register, http.MethodGet, "/api/service-requests", "")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 {
		t.Fatalf("expected 2 requests, got %d", body.Count)
	}
}

func TestServiceRequestDetailsNotFound(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.GET("/api/service-requests/:id", h.ServiceRequestDetails) },
		http.MethodGet, "/api/service-requests/missing", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NOT_FOUND") {
		t.Fatalf("expected NOT_FOUND envelope, got %s", w.Body.String())
	}
}

func TestTechnicianScheduleRejectsBadDate(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.GET("/api/technicians/:id/schedule", h.TechnicianSchedule) },
		http.MethodGet, "/api/technicians/t1/schedule?date=09-01-2026", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAssignOneEndToEnd(t *testing.T) {
	store := &stubStore{
		requests: []models.ServiceRequest{{
			ID:               "r1",
			RequestNumber:    "SR-001",
			ContainerID:      "c1",
			Status:           models.StatusPending,
			IssueDescription: "compressor wiring fault",
			RequestedAt:      time.Now(),
		}},
		technicians: []models.Technician{{
			ID:           "t1",
			Name:         "Asha",
			Skills:       []string{"electrical"},
			DutyStatus:   models.DutyActive,
			Category:     models.CategoryInternal,
			BaseLocation: &models.Location{Lat: 19.07, Lng: 72.87},
		}},
		containers: map[string]*models.Container{
			"c1": {ID: "c1", CurrentLocation: &models.Location{Lat: 19.08, Lng: 72.88}},
		},
	}
	h := newTestHandler(store)
	w := perform(h, func(r *gin.Engine) { r.POST("/api/service-requests/:id/assign", h.AssignOne) },
		http.MethodPost, "/api/service-requests/r1/assign", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var outcome models.AssignOutcome
	if err := json.Unmarshal(w.Body.Bytes(), &outcome); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !outcome.Assigned || outcome.TechnicianID != "t1" {
		t.Fatalf("expected assignment to t1, got %+v", outcome)
	}
}

func TestBucketScheduleMapsTypedErrors(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.POST("/api/assignments/schedule", h.BucketSchedule) },
		http.MethodPost, "/api/assignments/schedule", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "NO_TECHNICIANS_FOUND") {
		t.Fatalf("expected NO_TECHNICIANS_FOUND envelope, got %s", w.Body.String())
	}
}

func TestDistributeRejectsMalformedBody(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.POST("/api/assignments/distribute", h.Distribute) },
		http.MethodPost, "/api/assignments/distribute", `{"request_ids": "not-a-list"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestDistributeEmptyBodyUsesUnassigned(t *testing.T) {
	h := newTestHandler(&stubStore{})
	w := perform(h, func(r *gin.Engine) { r.POST("/api/assignments/distribute", h.Distribute) },
		http.MethodPost, "/api/assignments/distribute", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var result models.BatchResult
	if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Outcomes) != 0 {
		t.Fatalf("expected no outcomes when nothing is unassigned, got %d", len(result.Outcomes))
	}
}
