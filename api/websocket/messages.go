package websocket

import (
	"time"

	"github.com/OldStager01/decision-brain/pkg/models"
)

// OutgoingMessage is the frame sent to stream clients.
type OutgoingMessage struct {
	Type        string      `json:"type"`
	Environment string      `json:"environment"`
	Timestamp   time.Time   `json:"timestamp"`
	Severity    string      `json:"severity,omitempty"`
	Message     string      `json:"message,omitempty"`
	TraceID     string      `json:"trace_id,omitempty"`
	Data        interface{} `json:"data,omitempty"`
}

func newOutgoingMessage(event *models.Event) *OutgoingMessage {
	msgType := mapEventType(event.Type)
	if msgType == "" {
		return nil
	}

	return &OutgoingMessage{
		Type:        msgType,
		Environment: event.Environment,
		Timestamp:   event.Timestamp,
		Severity:    string(event.Severity),
		Message:     event.Message,
		TraceID:     event.TraceID,
		Data:        event.Data,
	}
}

func mapEventType(eventType models.EventType) string {
	switch eventType {
	case models.EventTypeDecisionMade:
		return "decision"
	case models.EventTypeDecisionDowngraded:
		return "safety_downgrade"
	case models.EventTypeRequestRejected:
		return "rejected"
	default:
		return ""
	}
}
