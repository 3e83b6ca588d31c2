package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"webhook-outbox/internal/adapter/http/dto"
	"webhook-outbox/internal/core/domain"
	"webhook-outbox/internal/core/ports"
	"webhook-outbox/pkg/apperror"
	"webhook-outbox/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler exposes the operator endpoints for the outbox: inspection,
// dead-letter requeue, and retention purge.
type AdminHandler struct {
	outbox ports.OutboxRepository
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(outbox ports.OutboxRepository) *AdminHandler {
	return &AdminHandler{outbox: outbox}
}

// GetStats handles GET /api/v1/outbox/stats.
func (h *AdminHandler) GetStats(c *gin.Context) {
	counts, err := h.outbox.CountByStatus(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}

	out := make(map[string]int64, len(counts))
	for status, n := range counts {
		out[string(status)] = n
	}
	response.OK(c, dto.StatsResponse{Counts: out})
}

// GetItem handles GET /api/v1/outbox/items/:id.
func (h *AdminHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid item id"))
		return
	}

	item, err := h.outbox.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	if item == nil {
		response.Error(c, apperror.ErrItemNotFound())
		return
	}
	response.OK(c, dto.FromOutboxItem(item))
}

// RequeueItem handles POST /api/v1/outbox/items/:id/requeue. Only dead items
// may be reopened.
func (h *AdminHandler) RequeueItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid item id"))
		return
	}

	err = h.outbox.RequeueDead(c.Request.Context(), id)
	switch {
	case err == nil:
		response.Accepted(c, gin.H{"id": id, "status": string(domain.OutboxStatusRetry)})
	case errors.Is(err, domain.ErrItemNotFound):
		response.Error(c, apperror.ErrItemNotFound())
	case errors.Is(err, domain.ErrItemNotDead):
		response.Error(c, apperror.ErrItemNotDead())
	default:
		response.Error(c, apperror.ErrDatabaseError(err))
	}
}

// RequeueBatch handles POST /api/v1/outbox/requeue?limit=N.
func (h *AdminHandler) RequeueBatch(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 10000 {
		response.Error(c, apperror.Validation("limit must be between 1 and 10000"))
		return
	}

	n, err := h.outbox.RequeueDeadBatch(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	response.Accepted(c, dto.RequeueBatchResponse{Requeued: n})
}

// Purge handles POST /api/v1/outbox/purge. Only terminal statuses may be
// purged; live queue rows are never deletable through this endpoint.
func (h *AdminHandler) Purge(c *gin.Context) {
	var req dto.PurgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation("statuses and older_than_days are required"))
		return
	}

	statuses := make([]domain.OutboxStatus, 0, len(req.Statuses))
	for _, s := range req.Statuses {
		status := domain.OutboxStatus(s)
		if !status.IsTerminal() {
			response.Error(c, apperror.Validation("only shadow, sent, and dead rows can be purged"))
			return
		}
		statuses = append(statuses, status)
	}

	cutoff := time.Now().Add(-time.Duration(req.OlderThanDays) * 24 * time.Hour)
	n, err := h.outbox.Purge(c.Request.Context(), statuses, cutoff)
	if err != nil {
		response.Error(c, apperror.ErrDatabaseError(err))
		return
	}
	response.OK(c, dto.PurgeResponse{Purged: n})
}

// HealthCheck handles GET /healthz — deep health check verifying all dependencies.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		type depStatus struct {
			Status string `json:"status"`
			Error  string `json:"error,omitempty"`
		}

		deps := make(map[string]depStatus)
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = depStatus{Status: "unhealthy", Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = depStatus{Status: "healthy"}
			}
		}

		status := "healthy"
		httpCode := http.StatusOK
		if !allHealthy {
			status = "degraded"
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}
