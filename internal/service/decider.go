package service

import (
	"context"
	"time"

	"github.com/OldStager01/decision-brain/internal/decision"
	"github.com/OldStager01/decision-brain/internal/events"
	"github.com/OldStager01/decision-brain/internal/logger"
	"github.com/OldStager01/decision-brain/internal/metrics"
	"github.com/OldStager01/decision-brain/pkg/models"
)

type Config struct {
	Engine    *decision.Engine
	Publisher *events.Publisher
	Metrics   *metrics.Metrics
}

// Decider runs the frozen engine and reports each outcome to the logs, the
// metrics registry and the event bus. None of those can alter the response.
type Decider struct {
	engine    *decision.Engine
	publisher *events.Publisher
	metrics   *metrics.Metrics
}

func NewDecider(cfg Config) *Decider {
	if cfg.Engine == nil {
		cfg.Engine = decision.NewEngine()
	}
	return &Decider{
		engine:    cfg.Engine,
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
	}
}

func (d *Decider) Decide(ctx context.Context, raw interface{}) *models.DecisionResponse {
	start := time.Now()
	resp := d.engine.Decide(raw)
	latency := time.Since(start)

	kind := rejectionKind(raw)
	d.log(ctx, raw, resp, kind)
	d.record(resp, kind, latency)
	d.publish(ctx, resp, kind)

	return resp
}

func (d *Decider) Health() models.HealthStatus {
	return d.engine.Health()
}

func (d *Decider) Scope() models.ScopeView {
	return d.engine.Scope()
}

// rejectionKind names why a request never reached the table, or "" if it did.
func rejectionKind(raw interface{}) string {
	if verr := decision.Validate(raw); verr != nil {
		return string(verr.Kind)
	}
	req := raw.(map[string]interface{})
	if _, ok := models.ParseEnvironment(req[decision.FieldEnvironment].(string)); !ok {
		return "invalid_environment"
	}
	return ""
}

func (d *Decider) log(ctx context.Context, raw interface{}, resp *models.DecisionResponse, kind string) {
	entry := logger.FromContext(ctx).WithField("environment", resp.Environment)
	if req, ok := raw.(map[string]interface{}); ok {
		if eventType, ok := req[decision.FieldEventType].(string); ok {
			entry = entry.WithField("event_type", eventType)
		}
	}

	switch {
	case kind != "":
		entry.WithField("kind", kind).Warnf("Decision rejected: %s", resp.Reason)
	case resp.SafetyFiltered:
		entry.WithField("proposed_action", resp.Proposed()).Warnf("Decision downgraded: %s", resp.Reason)
	default:
		entry.WithField("action", resp.Action).Infof("Decision: %s (%s)", resp.Action, resp.Reason)
	}
}

func (d *Decider) record(resp *models.DecisionResponse, kind string, latency time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.SetDecisionLatency(latency)
	if kind != "" {
		d.metrics.IncRejection(kind)
		return
	}
	d.metrics.IncDecision(resp.Environment, string(resp.Action))
	if resp.SafetyFiltered {
		d.metrics.IncDowngrade(resp.Environment, string(resp.Proposed()))
	}
}

func (d *Decider) publish(ctx context.Context, resp *models.DecisionResponse, kind string) {
	if d.publisher == nil {
		return
	}
	pub := d.publisher
	if traceID := logger.TraceIDFromContext(ctx); traceID != "" {
		pub = pub.WithTraceID(traceID)
	}

	if kind != "" {
		pub.RequestRejected(resp, kind)
		return
	}
	pub.DecisionMade(resp)
	if resp.SafetyFiltered {
		pub.DecisionDowngraded(resp)
	}
}
