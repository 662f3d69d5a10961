package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/decision-brain/internal/events"
	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/internal/metrics"
	"github.com/OldStager01/decision-brain/pkg/models"
)

func newTestDecider(t *testing.T) (*Decider, *events.EventBus, *metrics.Metrics) {
	t.Helper()
	bus := events.NewEventBus(16)
	t.Cleanup(bus.Close)
	m := metrics.New()
	return NewDecider(Config{Publisher: events.NewPublisher(bus), Metrics: m}), bus, m
}

func body(env, eventType string) map[string]interface{} {
	return map[string]interface{}{
		"environment": env,
		"event_type":  eventType,
		"metrics":     map[string]interface{}{"cpu_percent": 95.0},
	}
}

func TestDecider_Downgrade(t *testing.T) {
	d, bus, m := newTestDecider(t)
	all := bus.SubscribeAll()

	ctx := logger.WithTraceID(context.Background(), "trace-1")
	resp := d.Decide(ctx, body("prod", "high_cpu"))

	assert.Equal(t, models.ActionNoop, resp.Action)
	assert.True(t, resp.SafetyFiltered)
	assert.Equal(t, int64(1), m.DecisionCount("prod", "noop"))
	assert.Equal(t, int64(1), m.DowngradeCount("prod", "scale_up"))

	require.Len(t, all, 2)
	made := <-all
	assert.Equal(t, models.EventTypeDecisionMade, made.Type)
	assert.Equal(t, "trace-1", made.TraceID)
	assert.Equal(t, models.EventTypeDecisionDowngraded, (<-all).Type)
}

func TestDecider_Allowed(t *testing.T) {
	d, bus, m := newTestDecider(t)
	downgrades := bus.Subscribe(models.EventTypeDecisionDowngraded)

	resp := d.Decide(context.Background(), body("prod", "crash"))

	assert.Equal(t, models.ActionRestart, resp.Action)
	assert.Equal(t, int64(1), m.DecisionCount("prod", "restart"))
	assert.Len(t, downgrades, 0)
}

func TestDecider_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		raw          interface{}
		expectedKind string
	}{
		{"not an object", "oops", "not_object"},
		{"missing metrics", map[string]interface{}{"environment": "dev", "event_type": "crash"}, "missing_field"},
		{"bad metrics", map[string]interface{}{"environment": "dev", "event_type": "crash", "metrics": 1.0}, "malformed_metrics"},
		{"invalid environment", body("qa", "crash"), "invalid_environment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, bus, m := newTestDecider(t)
			rejected := bus.Subscribe(models.EventTypeRequestRejected)

			resp := d.Decide(context.Background(), tt.raw)

			assert.Equal(t, models.ActionNoop, resp.Action)
			assert.Equal(t, int64(1), m.RejectionCount(tt.expectedKind))
			require.Len(t, rejected, 1)
			event := <-rejected
			assert.Equal(t, tt.expectedKind, event.Data.(map[string]interface{})["kind"])
		})
	}
}

func TestDecider_WithoutObservers(t *testing.T) {
	d := NewDecider(Config{})

	resp := d.Decide(context.Background(), body("dev", "high_cpu"))

	assert.Equal(t, models.ActionScaleUp, resp.Action)
	assert.Equal(t, "healthy", d.Health().Status)
	assert.Len(t, d.Scope(), 3)
}
