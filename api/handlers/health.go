package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/OldStager01/decision-brain/pkg/models"
	"github.com/gin-gonic/gin"
)

// HealthChecker is satisfied by *database.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthReporter interface {
	Health() models.HealthStatus
}

type HealthHandler struct {
	reporter HealthReporter
	db       HealthChecker
}

// NewHealthHandler accepts a nil db when no audit database is configured.
func NewHealthHandler(reporter HealthReporter, db HealthChecker) *HealthHandler {
	return &HealthHandler{reporter: reporter, db: db}
}

type ProbeResponse struct {
	Status    string            `json:"status" example:"ready"`
	Timestamp string            `json:"timestamp" example:"2026-10-14T12:00:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health godoc
// @Summary Decision core health
// @Description Constant operational status of the frozen decision core
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthStatus
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Health())
}

// Ready godoc
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} ProbeResponse
// @Failure 503 {object} ProbeResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	checks := map[string]string{"decision_core": "healthy"}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.db.HealthCheck(ctx); err != nil {
			checks["audit_database"] = "unhealthy: " + err.Error()
			c.JSON(http.StatusServiceUnavailable, ProbeResponse{
				Status:    "not ready",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Checks:    checks,
			})
			return
		}
		checks["audit_database"] = "healthy"
	}

	c.JSON(http.StatusOK, ProbeResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} ProbeResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, ProbeResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
