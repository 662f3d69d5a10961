package decision

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/decision-brain/pkg/models"
)

var fixedNow = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	return NewEngine(WithClock(func() time.Time { return fixedNow }))
}

func request(env, eventType string) map[string]interface{} {
	return map[string]interface{}{
		"environment": env,
		"event_type":  eventType,
		"metrics": map[string]interface{}{
			"cpu_percent":    85.0,
			"memory_percent": 50.0,
			"error_rate":     0.01,
		},
	}
}

func TestEngine_Decide(t *testing.T) {
	tests := []struct {
		name             string
		env              string
		eventType        string
		expectedAction   models.Action
		expectedFiltered bool
		expectedProposed models.Action
	}{
		{
			name:           "dev high_cpu scales up",
			env:            "dev",
			eventType:      "high_cpu",
			expectedAction: models.ActionScaleUp,
		},
		{
			name:             "prod high_cpu is downgraded",
			env:              "prod",
			eventType:        "high_cpu",
			expectedAction:   models.ActionNoop,
			expectedFiltered: true,
			expectedProposed: models.ActionScaleUp,
		},
		{
			name:           "prod crash restarts",
			env:            "prod",
			eventType:      "crash",
			expectedAction: models.ActionRestart,
		},
		{
			name:             "stage crash is downgraded",
			env:              "stage",
			eventType:        "crash",
			expectedAction:   models.ActionNoop,
			expectedFiltered: true,
			expectedProposed: models.ActionRestart,
		},
		{
			name:           "stage high_memory scales up",
			env:            "stage",
			eventType:      "high_memory",
			expectedAction: models.ActionScaleUp,
		},
		{
			name:           "dev low_load scales down",
			env:            "dev",
			eventType:      "low_load",
			expectedAction: models.ActionScaleDown,
		},
		{
			name:           "identifiers are case-insensitive",
			env:            "DEV",
			eventType:      "High_CPU",
			expectedAction: models.ActionScaleUp,
		},
		{
			name:           "unknown event defaults to noop",
			env:            "prod",
			eventType:      "disk_full",
			expectedAction: models.ActionNoop,
		},
	}

	engine := newTestEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := engine.Decide(request(tt.env, tt.eventType))

			assert.Equal(t, tt.expectedAction, resp.Action)
			assert.Equal(t, tt.expectedFiltered, resp.SafetyFiltered)
			assert.True(t, resp.DemoFrozen)
			assert.Equal(t, models.UnixSeconds(fixedNow), resp.Timestamp)

			if tt.expectedFiltered {
				require.NotNil(t, resp.ProposedAction)
				assert.Equal(t, tt.expectedProposed, *resp.ProposedAction)
				assert.Contains(t, resp.Reason, "not allowed")
			} else {
				assert.Nil(t, resp.ProposedAction)
				assert.Contains(t, resp.Reason, "Deterministic decision for")
			}
		})
	}
}

func TestEngine_DecideEchoesLowercaseEnvironment(t *testing.T) {
	resp := newTestEngine().Decide(request("Prod", "CRASH"))

	assert.Equal(t, "prod", resp.Environment)
	assert.Equal(t, "Deterministic decision for crash in prod", resp.Reason)
}

func TestEngine_DecideDowngradeReason(t *testing.T) {
	resp := newTestEngine().Decide(request("prod", "high_cpu"))

	assert.Equal(t, "Action scale_up not allowed in prod, downgraded to NOOP", resp.Reason)
	assert.Equal(t, models.ActionScaleUp, resp.Proposed())
}

func TestEngine_DecideMissingFields(t *testing.T) {
	for _, field := range []string{FieldEnvironment, FieldEventType, FieldMetrics} {
		t.Run(field, func(t *testing.T) {
			req := request("dev", "high_cpu")
			delete(req, field)

			resp := newTestEngine().Decide(req)

			assert.Equal(t, models.ActionNoop, resp.Action)
			assert.Contains(t, resp.Reason, field)
			assert.False(t, resp.SafetyFiltered)
			assert.Nil(t, resp.ProposedAction)
		})
	}
}

func TestEngine_DecideMissingEnvironmentEchoesUnknown(t *testing.T) {
	req := request("dev", "high_cpu")
	delete(req, FieldEnvironment)

	resp := newTestEngine().Decide(req)

	assert.Equal(t, models.EnvironmentUnknown, resp.Environment)
}

func TestEngine_DecideValidatorFailureEchoesRawEnvironment(t *testing.T) {
	req := request("Stage", "high_cpu")
	delete(req, FieldMetrics)

	resp := newTestEngine().Decide(req)

	assert.Equal(t, "Stage", resp.Environment)
	assert.Equal(t, "Missing required field: metrics", resp.Reason)
}

func TestEngine_DecideInvalidEnvironment(t *testing.T) {
	resp := newTestEngine().Decide(request("invalid", "high_cpu"))

	assert.Equal(t, models.ActionNoop, resp.Action)
	assert.Equal(t, "Invalid environment: invalid", resp.Reason)
	assert.Equal(t, "invalid", resp.Environment)
	assert.False(t, resp.SafetyFiltered)
}

func TestEngine_DecideNotAnObject(t *testing.T) {
	inputs := map[string]interface{}{
		"nil":    nil,
		"string": "dev",
		"array":  []interface{}{"dev"},
		"number": 42.0,
	}

	for name, raw := range inputs {
		t.Run(name, func(t *testing.T) {
			resp := newTestEngine().Decide(raw)

			assert.Equal(t, models.ActionNoop, resp.Action)
			assert.Equal(t, "Request must be a JSON object", resp.Reason)
			assert.Equal(t, models.EnvironmentUnknown, resp.Environment)
		})
	}
}

func TestEngine_DecideIgnoresMetricsValues(t *testing.T) {
	engine := newTestEngine()
	low := request("dev", "high_cpu")
	low["metrics"] = map[string]interface{}{}

	assert.Equal(t, engine.Decide(request("dev", "high_cpu")).Action, engine.Decide(low).Action)
}

func TestEngine_Determinism(t *testing.T) {
	engine := NewEngine()

	for _, env := range []string{"dev", "stage", "prod", "bogus"} {
		for _, event := range []string{"high_cpu", "high_memory", "crash", "low_load", "other"} {
			first := engine.Decide(request(env, event))
			second := engine.Decide(request(env, event))

			assert.Equal(t, first.Action, second.Action)
			assert.Equal(t, first.Reason, second.Reason)
			assert.Equal(t, first.Environment, second.Environment)
			assert.Equal(t, first.SafetyFiltered, second.SafetyFiltered)
		}
	}
}

func TestEngine_SafetyInvariant(t *testing.T) {
	engine := newTestEngine()
	events := []string{"high_cpu", "high_memory", "crash", "low_load", "unknown_event", ""}

	for _, env := range models.Environments() {
		for _, event := range events {
			resp := engine.Decide(request(string(env), event))
			assert.True(t, IsAllowed(env, resp.Action),
				"%s emitted for %s/%s is outside the allow-list", resp.Action, env, event)
		}
	}
}

func TestEngine_ConcurrentDecide(t *testing.T) {
	engine := newTestEngine()

	var wg sync.WaitGroup
	results := make([]*models.DecisionResponse, 64)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = engine.Decide(request("prod", "high_cpu"))
		}(i)
	}
	wg.Wait()

	for _, resp := range results {
		assert.Equal(t, models.ActionNoop, resp.Action)
		assert.True(t, resp.SafetyFiltered)
	}
}

func TestEngine_Health(t *testing.T) {
	health := newTestEngine().Health()

	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.DemoFrozen)
	assert.False(t, health.LearningEnabled)
	assert.False(t, health.ExplorationEnabled)
	assert.True(t, health.Stateless)
}
