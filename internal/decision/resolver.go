package decision

import (
	"errors"
	"strings"

	"github.com/OldStager01/decision-brain/pkg/models"
)

var ErrInvalidEnvironment = errors.New("invalid environment")

// EnvironmentError carries the rejected environment value.
type EnvironmentError struct {
	Value string
}

func (e *EnvironmentError) Error() string {
	return "Invalid environment: " + e.Value
}

func (e *EnvironmentError) Unwrap() error {
	return ErrInvalidEnvironment
}

// Resolution is the proposed action before safety filtering.
type Resolution struct {
	Environment models.Environment
	EventType   string
	Proposed    models.Action
	// Matched is false when the table had no entry and noop was defaulted.
	Matched bool
}

// Resolve canonicalizes its inputs and looks up the frozen decision table.
func Resolve(environment, eventType string) (Resolution, error) {
	envStr := strings.ToLower(environment)
	eventType = strings.ToLower(eventType)

	env, ok := models.ParseEnvironment(envStr)
	if !ok {
		return Resolution{}, &EnvironmentError{Value: envStr}
	}

	proposed, matched := lookup(env, eventType)
	if !matched {
		proposed = models.ActionNoop
	}

	return Resolution{
		Environment: env,
		EventType:   eventType,
		Proposed:    proposed,
		Matched:     matched,
	}, nil
}
