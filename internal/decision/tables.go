package decision

import "github.com/OldStager01/decision-brain/pkg/models"

type tableKey struct {
	env       models.Environment
	eventType string
}

// actionScope is the per-environment allow-list. noop is in every entry.
var actionScope = map[models.Environment]map[models.Action]struct{}{
	models.EnvironmentDev:   setOf(models.ActionNoop, models.ActionScaleUp, models.ActionScaleDown, models.ActionRestart),
	models.EnvironmentStage: setOf(models.ActionNoop, models.ActionScaleUp, models.ActionScaleDown),
	models.EnvironmentProd:  setOf(models.ActionNoop, models.ActionRestart),
}

// decisionTable is frozen. A missing key resolves to noop.
var decisionTable = map[tableKey]models.Action{
	{models.EnvironmentDev, "high_cpu"}:    models.ActionScaleUp,
	{models.EnvironmentDev, "high_memory"}: models.ActionScaleUp,
	{models.EnvironmentDev, "crash"}:       models.ActionRestart,
	{models.EnvironmentDev, "low_load"}:    models.ActionScaleDown,

	{models.EnvironmentStage, "high_cpu"}:    models.ActionScaleUp,
	{models.EnvironmentStage, "high_memory"}: models.ActionScaleUp,
	{models.EnvironmentStage, "crash"}:       models.ActionRestart,
	{models.EnvironmentStage, "low_load"}:    models.ActionScaleDown,

	{models.EnvironmentProd, "high_cpu"}:    models.ActionScaleUp,
	{models.EnvironmentProd, "high_memory"}: models.ActionNoop,
	{models.EnvironmentProd, "crash"}:       models.ActionRestart,
	{models.EnvironmentProd, "low_load"}:    models.ActionNoop,
}

func setOf(actions ...models.Action) map[models.Action]struct{} {
	set := make(map[models.Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// IsAllowed reports whether action is in the allow-list of env.
func IsAllowed(env models.Environment, action models.Action) bool {
	_, ok := actionScope[env][action]
	return ok
}

// ScopeFor returns the allowed actions of env in canonical order.
func ScopeFor(env models.Environment) []models.Action {
	allowed := make([]models.Action, 0, len(actionScope[env]))
	for _, a := range models.Actions() {
		if IsAllowed(env, a) {
			allowed = append(allowed, a)
		}
	}
	return allowed
}

// Scope returns the introspection view of the action scope.
func Scope() models.ScopeView {
	view := make(models.ScopeView, len(actionScope))
	for _, env := range models.Environments() {
		view[env] = ScopeFor(env)
	}
	return view
}

func lookup(env models.Environment, eventType string) (models.Action, bool) {
	action, ok := decisionTable[tableKey{env: env, eventType: eventType}]
	return action, ok
}
