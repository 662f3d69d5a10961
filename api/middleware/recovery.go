package middleware

import (
	"fmt"
	"net/http"

	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/pkg/models"
	"github.com/gin-gonic/gin"
)

// Recovery answers a handler panic with the no-op envelope so callers
// always receive a decision-shaped body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.FromContext(c.Request.Context()).
			WithField("path", c.Request.URL.Path).
			Errorf("Recovered from panic: %v", recovered)

		c.AbortWithStatusJSON(http.StatusInternalServerError, models.DecisionResponse{
			Action:      models.ActionNoop,
			Reason:      fmt.Sprintf("Internal error: %v", recovered),
			DemoFrozen:  true,
			Timestamp:   0,
			Environment: models.EnvironmentUnknown,
		})
	})
}
