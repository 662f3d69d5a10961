package decision

import "github.com/OldStager01/decision-brain/pkg/models"

// Health reports the constant status of the frozen core.
func Health() models.HealthStatus {
	return models.HealthStatus{
		Status:             "healthy",
		DemoFrozen:         true,
		LearningEnabled:    false,
		ExplorationEnabled: false,
		Stateless:          true,
	}
}
