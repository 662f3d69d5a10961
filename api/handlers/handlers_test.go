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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/decision-brain/internal/decision"
	"github.com/OldStager01/decision-brain/internal/service"
	"github.com/OldStager01/decision-brain/pkg/models"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	engine := decision.NewEngine(decision.WithClock(func() time.Time {
		return time.Unix(1760443200, 0)
	}))
	decider := service.NewDecider(service.Config{Engine: engine})

	decisionHandler := NewDecisionHandler(decider)
	healthHandler := NewHealthHandler(decider, nil)

	r := gin.New()
	r.GET("/", Dashboard)
	r.POST("/decide", decisionHandler.Decide)
	r.GET("/scope", decisionHandler.Scope)
	r.GET("/health", healthHandler.Health)
	r.GET("/health/live", healthHandler.Live)
	r.GET("/health/ready", healthHandler.Ready)
	return r
}

func postDecide(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, models.DecisionResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/decide", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp models.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestDecisionHandler_Decide(t *testing.T) {
	r := newRouter()

	tests := []struct {
		name           string
		body           string
		expectedAction models.Action
		expectedEnv    string
		expectedReason string
		filtered       bool
	}{
		{
			name:           "dev high cpu scales up",
			body:           `{"environment":"dev","event_type":"high_cpu","metrics":{"cpu_percent":85}}`,
			expectedAction: models.ActionScaleUp,
			expectedEnv:    "dev",
			expectedReason: "Deterministic decision for high_cpu in dev",
		},
		{
			name:           "prod high cpu is downgraded",
			body:           `{"environment":"prod","event_type":"high_cpu","metrics":{}}`,
			expectedAction: models.ActionNoop,
			expectedEnv:    "prod",
			expectedReason: "Action scale_up not allowed in prod, downgraded to NOOP",
			filtered:       true,
		},
		{
			name:           "invalid json",
			body:           `{not json`,
			expectedAction: models.ActionNoop,
			expectedEnv:    models.EnvironmentUnknown,
			expectedReason: "Request must be a JSON object",
		},
		{
			name:           "json array",
			body:           `[1,2,3]`,
			expectedAction: models.ActionNoop,
			expectedEnv:    models.EnvironmentUnknown,
			expectedReason: "Request must be a JSON object",
		},
		{
			name:           "trailing data",
			body:           `{} {}`,
			expectedAction: models.ActionNoop,
			expectedEnv:    models.EnvironmentUnknown,
			expectedReason: "Request must be a JSON object",
		},
		{
			name:           "missing metrics",
			body:           `{"environment":"dev","event_type":"crash"}`,
			expectedAction: models.ActionNoop,
			expectedEnv:    "dev",
			expectedReason: "Missing required field: metrics",
		},
		{
			name:           "invalid environment",
			body:           `{"environment":"qa","event_type":"crash","metrics":{}}`,
			expectedAction: models.ActionNoop,
			expectedEnv:    "qa",
			expectedReason: "Invalid environment: qa",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := postDecide(t, r, tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.expectedAction, resp.Action)
			assert.Equal(t, tt.expectedEnv, resp.Environment)
			assert.Equal(t, tt.expectedReason, resp.Reason)
			assert.Equal(t, tt.filtered, resp.SafetyFiltered)
			assert.True(t, resp.DemoFrozen)
		})
	}
}

func TestDecisionHandler_DecideBodyTooLarge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	decider := service.NewDecider(service.Config{})
	h := NewDecisionHandler(decider)

	r := gin.New()
	r.POST("/decide", func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 8)
		c.Next()
	}, h.Decide)

	req := httptest.NewRequest(http.MethodPost, "/decide", strings.NewReader(`{"environment":"dev"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestDecisionHandler_Scope(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/scope", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var scope models.ScopeView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &scope))
	assert.Equal(t, decision.Scope(), scope)
}

func TestHealthHandler(t *testing.T) {
	r := newRouter()

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var status models.HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "healthy", status.Status)
		assert.True(t, status.DemoFrozen)
		assert.False(t, status.LearningEnabled)
		assert.False(t, status.ExplorationEnabled)
	})

	t.Run("live", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "alive")
	})

	t.Run("ready without database", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "audit_database")
	})
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealthHandler_ReadyWithDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	decider := service.NewDecider(service.Config{})

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "database healthy", expectedStatus: http.StatusOK},
		{name: "database down", err: errors.New("connection refused"), expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(decider, stubChecker{err: tt.err})
			r := gin.New()
			r.GET("/health/ready", h.Ready)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "audit_database")
		})
	}
}

func TestDashboard(t *testing.T) {
	r := newRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Decision Brain")
}

type stubReader struct {
	records []models.DecisionRecord
	stats   *models.DecisionStats
	err     error
	limit   int
}

func (s *stubReader) GetRecent(_ context.Context, limit int) ([]models.DecisionRecord, error) {
	s.limit = limit
	return s.records, s.err
}

func (s *stubReader) GetStats(context.Context) (*models.DecisionStats, error) {
	return s.stats, s.err
}

func auditRouter(reader AuditReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuditHandler(reader)
	r := gin.New()
	r.GET("/decisions/recent", h.Recent)
	r.GET("/decisions/stats", h.Stats)
	return r
}

func TestAuditHandler_Disabled(t *testing.T) {
	r := auditRouter(nil)

	for _, path := range []string{"/decisions/recent", "/decisions/stats"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestAuditHandler_Recent(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		err            error
		expectedStatus int
		expectedLimit  int
	}{
		{name: "default limit", expectedStatus: http.StatusOK, expectedLimit: 20},
		{name: "custom limit", query: "?limit=5", expectedStatus: http.StatusOK, expectedLimit: 5},
		{name: "non numeric limit", query: "?limit=abc", expectedStatus: http.StatusBadRequest},
		{name: "limit too large", query: "?limit=500", expectedStatus: http.StatusBadRequest},
		{name: "store error", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedLimit: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &stubReader{
				records: []models.DecisionRecord{{ID: 1, Environment: "dev", Action: "scale_up"}},
				err:     tt.err,
			}
			r := auditRouter(reader)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/decisions/recent"+tt.query, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLimit, reader.limit)
			if tt.expectedStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"count":1`)
			}
		})
	}
}

func TestAuditHandler_Stats(t *testing.T) {
	reader := &stubReader{stats: &models.DecisionStats{
		Total:    3,
		Filtered: 1,
		ByAction: map[string]map[string]int64{"prod": {"noop": 1, "restart": 2}},
	}}
	r := auditRouter(reader)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/decisions/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.DecisionStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(2), stats.ByAction["prod"]["restart"])
}
