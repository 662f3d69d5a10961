package models

import "strings"

type Environment string

const (
	EnvironmentDev   Environment = "dev"
	EnvironmentStage Environment = "stage"
	EnvironmentProd  Environment = "prod"
)

// Environments lists every recognised environment in canonical order.
func Environments() []Environment {
	return []Environment{EnvironmentDev, EnvironmentStage, EnvironmentProd}
}

// ParseEnvironment lowercases s and matches it against the closed set.
func ParseEnvironment(s string) (Environment, bool) {
	switch env := Environment(strings.ToLower(s)); env {
	case EnvironmentDev, EnvironmentStage, EnvironmentProd:
		return env, true
	default:
		return "", false
	}
}

func (e Environment) String() string {
	return string(e)
}

type Action string

const (
	ActionNoop      Action = "noop"
	ActionScaleUp   Action = "scale_up"
	ActionScaleDown Action = "scale_down"
	ActionRestart   Action = "restart"
)

// Actions lists every action in canonical order.
func Actions() []Action {
	return []Action{ActionNoop, ActionScaleUp, ActionScaleDown, ActionRestart}
}

func (a Action) String() string {
	return string(a)
}

// EnvironmentUnknown is echoed when a request carries no usable environment.
const EnvironmentUnknown = "unknown"

// DecisionResponse is the envelope returned for every decision request.
type DecisionResponse struct {
	Action         Action  `json:"action" example:"scale_up"`
	Reason         string  `json:"reason" example:"Deterministic decision for high_cpu in dev"`
	DemoFrozen     bool    `json:"demo_frozen" example:"true"`
	Timestamp      float64 `json:"timestamp" example:"1760428800.123"`
	Environment    string  `json:"environment" example:"dev"`
	SafetyFiltered bool    `json:"safety_filtered" example:"false"`
	ProposedAction *Action `json:"proposed_action,omitempty" swaggertype:"string" example:"restart"`
}

// Proposed returns the downgraded action, or the emitted one when nothing was filtered.
func (r *DecisionResponse) Proposed() Action {
	if r.ProposedAction != nil {
		return *r.ProposedAction
	}
	return r.Action
}

// HealthStatus is the constant operational status of the decision core.
type HealthStatus struct {
	Status             string `json:"status" example:"healthy"`
	DemoFrozen         bool   `json:"demo_frozen" example:"true"`
	LearningEnabled    bool   `json:"learning_enabled" example:"false"`
	ExplorationEnabled bool   `json:"exploration_enabled" example:"false"`
	Stateless          bool   `json:"stateless" example:"true"`
}

// ScopeView is the introspection form of the action scope.
type ScopeView map[Environment][]Action
