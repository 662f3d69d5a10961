package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/OldStager01/decision-brain/pkg/models"
	"github.com/gin-gonic/gin"
)

// Decider is satisfied by *service.Decider.
type Decider interface {
	Decide(ctx context.Context, raw interface{}) *models.DecisionResponse
	Scope() models.ScopeView
}

type DecisionHandler struct {
	decider Decider
}

func NewDecisionHandler(decider Decider) *DecisionHandler {
	return &DecisionHandler{decider: decider}
}

// DecisionRequest documents the accepted body. The handler decodes bodies
// generically so malformed shapes reach the validator.
type DecisionRequest struct {
	Environment string             `json:"environment" example:"dev" enums:"dev,stage,prod"`
	EventType   string             `json:"event_type" example:"high_cpu"`
	Metrics     map[string]float64 `json:"metrics"`
}

// Decide godoc
// @Summary Make a decision
// @Description Resolve a remediation action for an environment and event type, clipped to the environment's action scope. Malformed requests yield a noop with a reason.
// @Tags Decisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body DecisionRequest true "Decision request"
// @Success 200 {object} models.DecisionResponse
// @Failure 401 {object} map[string]string "Missing or invalid token"
// @Failure 413 {object} map[string]string "Body too large"
// @Router /decide [post]
func (h *DecisionHandler) Decide(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	c.JSON(http.StatusOK, h.decider.Decide(c.Request.Context(), decodeBody(body)))
}

// decodeBody returns nil for anything that is not a single JSON value.
func decodeBody(body []byte) interface{} {
	dec := json.NewDecoder(bytes.NewReader(body))
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil
	}
	if dec.More() {
		return nil
	}
	return raw
}

// Scope godoc
// @Summary Action scope
// @Description Allowed actions per environment
// @Tags Decisions
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /scope [get]
func (h *DecisionHandler) Scope(c *gin.Context) {
	c.JSON(http.StatusOK, h.decider.Scope())
}
