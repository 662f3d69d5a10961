package decision

import (
	"fmt"
	"time"

	"github.com/OldStager01/decision-brain/pkg/models"
)

func noopResponse(reason, environment string, now time.Time) *models.DecisionResponse {
	if environment == "" {
		environment = models.EnvironmentUnknown
	}
	return &models.DecisionResponse{
		Action:      models.ActionNoop,
		Reason:      reason,
		DemoFrozen:  true,
		Timestamp:   models.UnixSeconds(now),
		Environment: environment,
	}
}

func decisionResponse(res Resolution, filtered FilterResult, now time.Time) *models.DecisionResponse {
	resp := &models.DecisionResponse{
		Action:      filtered.Action,
		Reason:      fmt.Sprintf("Deterministic decision for %s in %s", res.EventType, res.Environment),
		DemoFrozen:  true,
		Timestamp:   models.UnixSeconds(now),
		Environment: res.Environment.String(),
	}

	if filtered.Filtered {
		proposed := filtered.Proposed
		resp.Reason = fmt.Sprintf("Action %s not allowed in %s, downgraded to NOOP", proposed, res.Environment)
		resp.SafetyFiltered = true
		resp.ProposedAction = &proposed
	}

	return resp
}
