package decision

import (
	"time"

	"github.com/OldStager01/decision-brain/pkg/models"
)

// Engine runs Validate, Resolve, Filter and builds the response. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for response timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine returns an engine stamping responses with the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Decide never fails: malformed input yields a noop response with a reason.
func (e *Engine) Decide(raw interface{}) *models.DecisionResponse {
	if verr := Validate(raw); verr != nil {
		return noopResponse(verr.Reason, rawEnvironment(raw), e.now())
	}

	req := raw.(map[string]interface{})
	res, err := Resolve(req[FieldEnvironment].(string), req[FieldEventType].(string))
	if err != nil {
		envErr := err.(*EnvironmentError)
		return noopResponse(envErr.Error(), envErr.Value, e.now())
	}

	return decisionResponse(res, Filter(res.Environment, res.Proposed), e.now())
}

func (e *Engine) Health() models.HealthStatus {
	return Health()
}

func (e *Engine) Scope() models.ScopeView {
	return Scope()
}
