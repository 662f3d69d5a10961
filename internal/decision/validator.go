package decision

import "fmt"

// ErrorKind classifies why a request failed validation.
type ErrorKind string

const (
	KindNotObject        ErrorKind = "not_object"
	KindMissingField     ErrorKind = "missing_field"
	KindMalformedMetrics ErrorKind = "malformed_metrics"
	KindMalformedField   ErrorKind = "malformed_field"
)

const (
	FieldEnvironment = "environment"
	FieldEventType   = "event_type"
	FieldMetrics     = "metrics"
)

// ValidationError describes the first structural problem found in a request.
type ValidationError struct {
	Kind   ErrorKind
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validate checks the shape of a decoded request. Checks run in a fixed
// order and the first failure wins.
func Validate(raw interface{}) *ValidationError {
	req, ok := raw.(map[string]interface{})
	if !ok {
		return &ValidationError{Kind: KindNotObject, Reason: "Request must be a JSON object"}
	}

	for _, field := range []string{FieldEnvironment, FieldEventType, FieldMetrics} {
		if _, present := req[field]; !present {
			return &ValidationError{
				Kind:   KindMissingField,
				Field:  field,
				Reason: "Missing required field: " + field,
			}
		}
	}

	if _, ok := req[FieldMetrics].(map[string]interface{}); !ok {
		return &ValidationError{
			Kind:   KindMalformedMetrics,
			Field:  FieldMetrics,
			Reason: fmt.Sprintf("Field '%s' must be an object", FieldMetrics),
		}
	}

	for _, field := range []string{FieldEnvironment, FieldEventType} {
		if _, ok := req[field].(string); !ok {
			return &ValidationError{
				Kind:   KindMalformedField,
				Field:  field,
				Reason: fmt.Sprintf("Field '%s' must be a string", field),
			}
		}
	}

	return nil
}

// rawEnvironment returns the environment string to echo back, or "unknown".
func rawEnvironment(raw interface{}) string {
	req, ok := raw.(map[string]interface{})
	if !ok {
		return ""
	}
	env, _ := req[FieldEnvironment].(string)
	return env
}
