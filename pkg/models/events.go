package models

import "time"

type EventType string

const (
	EventTypeDecisionMade       EventType = "decision_made"
	EventTypeDecisionDowngraded EventType = "decision_downgraded"
	EventTypeRequestRejected    EventType = "request_rejected"
)

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID          string        `json:"id"`
	Type        EventType     `json:"type"`
	Severity    EventSeverity `json:"severity"`
	Environment string        `json:"environment,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	Message     string        `json:"message"`
	Data        interface{}   `json:"data,omitempty"`
	TraceID     string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, environment, message string) *Event {
	return &Event{
		ID:          NewUUID(),
		Type:        eventType,
		Severity:    SeverityInfo,
		Environment: environment,
		Timestamp:   time.Now(),
		Message:     message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}

// Decision returns the decision payload carried by the event, if any.
func (e *Event) Decision() (*DecisionResponse, bool) {
	resp, ok := e.Data.(*DecisionResponse)
	return resp, ok && resp != nil
}
