package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/decision-brain/internal/events"
	"github.com/OldStager01/decision-brain/internal/metrics"
	"github.com/OldStager01/decision-brain/internal/service"
	"github.com/OldStager01/decision-brain/pkg/config"
	"github.com/OldStager01/decision-brain/pkg/models"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "decision-brain", Mode: "test"},
		API: config.APIConfig{
			Port:         0,
			RateLimit:    1000,
			MaxBodyBytes: 1 << 20,
			Auth: config.AuthConfig{
				JWTSecret:   "test-secret",
				JWTIssuer:   "decision-brain",
				JWTDuration: time.Hour,
			},
			CORS: config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) (*Server, *metrics.Metrics) {
	t.Helper()

	m := metrics.New()
	bus := events.NewEventBus(16)
	decider := service.NewDecider(service.Config{
		Publisher: events.NewPublisher(bus),
		Metrics:   m,
	})

	s := NewServer(cfg, Dependencies{Decider: decider, Bus: bus, Metrics: m})
	gin.SetMode(gin.TestMode)
	t.Cleanup(func() {
		_ = s.Shutdown(context.Background())
		bus.Close()
	})
	return s, m
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decideRequest(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/decide", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestServer_Decide(t *testing.T) {
	s, m := newTestServer(t, testConfig())

	w := serve(s, decideRequest(`{"environment":"stage","event_type":"crash","metrics":{}}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))

	var resp models.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ActionNoop, resp.Action)
	assert.True(t, resp.SafetyFiltered)
	require.NotNil(t, resp.ProposedAction)
	assert.Equal(t, models.ActionRestart, *resp.ProposedAction)

	assert.Equal(t, int64(1), m.DowngradeCount("stage", "restart"))
}

func TestServer_Metrics(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	serve(s, decideRequest(`{"environment":"dev","event_type":"high_cpu","metrics":{}}`))

	w := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `brain_decisions_total{environment="dev",action="scale_up"} 1`)
}

func TestServer_MetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	s, _ := newTestServer(t, cfg)

	w := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_PublicRoutes(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	for _, path := range []string{"/", "/health", "/health/live", "/health/ready", "/scope", "/swagger/index.html"} {
		w := serve(s, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestServer_AuditDisabledWithoutDatabase(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	w := serve(s, httptest.NewRequest(http.MethodGet, "/decisions/stats", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestServer_Auth(t *testing.T) {
	cfg := testConfig()
	cfg.API.Auth.Enabled = true
	s, _ := newTestServer(t, cfg)

	body := `{"environment":"dev","event_type":"crash","metrics":{}}`

	w := serve(s, decideRequest(body))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := s.AuthService().GenerateToken("operator")
	require.NoError(t, err)

	req := decideRequest(body)
	req.Header.Set("Authorization", "Bearer "+token)
	w = serve(s, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// Scope and health stay public.
	w = serve(s, httptest.NewRequest(http.MethodGet, "/scope", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_RecoveryReturnsNoopEnvelope(t *testing.T) {
	s, _ := newTestServer(t, testConfig())
	s.Router().GET("/boom", func(c *gin.Context) { panic("table corrupted") })

	w := serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.DecisionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.ActionNoop, resp.Action)
	assert.Equal(t, "Internal error: table corrupted", resp.Reason)
	assert.Equal(t, models.EnvironmentUnknown, resp.Environment)
	assert.Zero(t, resp.Timestamp)
	assert.True(t, resp.DemoFrozen)
}
