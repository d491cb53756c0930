package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/reeferwatch/backend/internal/models"
	"github.com/reeferwatch/backend/internal/service"
)

// ReadStore is the query surface the HTTP layer needs besides the engine.
type ReadStore interface {
	Ping(ctx context.Context) error
	ListServiceRequests(ctx context.Context) ([]models.ServiceRequest, error)
	ListServiceRequestsByStatus(ctx context.Context, status string) ([]models.ServiceRequest, error)
	GetServiceRequest(ctx context.Context, id string) (*models.ServiceRequest, error)
	ListTechnicians(ctx context.Context) ([]models.Technician, error)
	GetTechnicianSchedule(ctx context.Context, technicianID string, day time.Time) ([]models.ServiceRequest, error)
}

type Handler struct {
	Store     ReadStore
	Scheduler *service.SchedulerService
	Validator *validator.Validate
	Logger    zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary List service requests
// @Description Service requests, optionally filtered by status
// @Tags service-requests
// @Produce json
// @Param status query string false "pending|scheduled|in_progress|completed|cancelled"
// @Success 200 {array} models.ServiceRequest
// @Router /api/service-requests [get]
func (h *Handler) ServiceRequestsList(c *gin.Context) {
	status := c.Query("status")

	var (
		requests []models.ServiceRequest
		err      error
	)
	if status != "" {
		requests, err = h.Store.ListServiceRequestsByStatus(c.Request.Context(), status)
	} else {
		requests, err = h.Store.ListServiceRequests(c.Request.Context())
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list service requests", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": requests, "count": len(requests)})
}

func (h *Handler) ServiceRequestDetails(c *gin.Context) {
	req, err := h.Store.GetServiceRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Service request not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load service request", err.Error())
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) TechniciansList(c *gin.Context) {
	technicians, err := h.Store.ListTechnicians(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": technicians, "count": len(technicians)})
}

// @Summary Technician day schedule
// @Tags technicians
// @Produce json
// @Param id path string true "technician id"
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Success 200 {array} models.ServiceRequest
// @Router /api/technicians/{id}/schedule [get]
func (h *Handler) TechnicianSchedule(c *gin.Context) {
	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "date must be YYYY-MM-DD", nil)
			return
		}
		day = parsed
	}

	schedule, err := h.Store.GetTechnicianSchedule(c.Request.Context(), c.Param("id"), day)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to load schedule", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": schedule, "count": len(schedule)})
}

// @Summary Auto-assign one service request
// @Description Scores eligible technicians and commits the best match
// @Tags assignments
// @Produce json
// @Param id path string true "service request id"
// @Success 200 {object} models.AssignOutcome
// @Router /api/service-requests/{id}/assign [post]
func (h *Handler) AssignOne(c *gin.Context) {
	outcome, err := h.Scheduler.AssignOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

type distributeRequest struct {
	RequestIDs []string `json:"request_ids" validate:"omitempty,dive,required"`
}

// @Summary Distribute pending service requests
// @Description Assigns a batch of requests sequentially, recomputing scores after each commit
// @Tags assignments
// @Accept json
// @Produce json
// @Param body body distributeRequest false "explicit request ids; omit for all unassigned"
// @Success 200 {object} models.BatchResult
// @Router /api/assignments/distribute [post]
func (h *Handler) Distribute(c *gin.Context) {
	var body distributeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid JSON body", err.Error())
			return
		}
		if err := h.Validator.Struct(body); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "request_ids must be non-empty strings", err.Error())
			return
		}
	}

	result, err := h.Scheduler.DistributeBatch(c.Request.Context(), body.RequestIDs)
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Run the bucket scheduler
// @Description Round-robins unassigned requests across internal technicians with daily capacity
// @Tags assignments
// @Produce json
// @Success 200 {object} models.BucketResult
// @Router /api/assignments/schedule [post]
func (h *Handler) BucketSchedule(c *gin.Context) {
	result, err := h.Scheduler.RunBucketSchedule(c.Request.Context())
	if err != nil {
		h.writeEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeEngineError(c *gin.Context, err error) {
	var engineErr *service.Error
	if errors.As(err, &engineErr) {
		writeError(c, engineErr.Status, engineErr.Code, engineErr.Message, nil)
		return
	}
	h.Logger.Error().Err(err).Msg("scheduling operation failed")
	writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Scheduling operation failed", err.Error())
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
