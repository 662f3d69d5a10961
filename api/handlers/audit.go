package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/OldStager01/decision-brain/pkg/models"
	"github.com/gin-gonic/gin"
)

const maxRecentLimit = 200

// AuditReader is satisfied by *queries.DecisionRepository.
type AuditReader interface {
	GetRecent(ctx context.Context, limit int) ([]models.DecisionRecord, error)
	GetStats(ctx context.Context) (*models.DecisionStats, error)
}

type AuditHandler struct {
	reader AuditReader
}

// NewAuditHandler accepts a nil reader; every route then answers 503.
func NewAuditHandler(reader AuditReader) *AuditHandler {
	return &AuditHandler{reader: reader}
}

func (h *AuditHandler) available(c *gin.Context) bool {
	if h.reader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "decision audit is disabled"})
		return false
	}
	return true
}

// Recent godoc
// @Summary Recent decisions
// @Description Most recent audited decisions, newest first
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum records (1-200)" default(20)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string "Audit disabled"
// @Router /decisions/recent [get]
func (h *AuditHandler) Recent(c *gin.Context) {
	if !h.available(c) {
		return
	}

	limit := 20
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 || n > maxRecentLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	records, err := h.reader.GetRecent(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch decisions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"decisions": records,
		"count":     len(records),
	})
}

// Stats godoc
// @Summary Decision statistics
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DecisionStats
// @Failure 503 {object} map[string]string "Audit disabled"
// @Router /decisions/stats [get]
func (h *AuditHandler) Stats(c *gin.Context) {
	if !h.available(c) {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.reader.GetStats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch decision stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
