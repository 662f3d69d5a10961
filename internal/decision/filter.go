package decision

import "github.com/OldStager01/decision-brain/pkg/models"

// FilterResult is the action that survives the safety cage.
type FilterResult struct {
	Action   models.Action
	Filtered bool
	// Proposed is set only when Filtered is true.
	Proposed models.Action
}

// Filter clips proposed to the allow-list of env, downgrading to noop.
func Filter(env models.Environment, proposed models.Action) FilterResult {
	if IsAllowed(env, proposed) {
		return FilterResult{Action: proposed}
	}
	return FilterResult{
		Action:   models.ActionNoop,
		Filtered: true,
		Proposed: proposed,
	}
}
