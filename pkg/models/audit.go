package models

import "time"

// DecisionRecord is a persisted audit entry for one emitted decision.
type DecisionRecord struct {
	ID             int64     `json:"id"`
	EventID        string    `json:"event_id"`
	TraceID        string    `json:"trace_id,omitempty"`
	Environment    string    `json:"environment"`
	Action         string    `json:"action"`
	ProposedAction string    `json:"proposed_action,omitempty"`
	SafetyFiltered bool      `json:"safety_filtered"`
	Reason         string    `json:"reason"`
	DecidedAt      time.Time `json:"decided_at"`
}

// NewDecisionRecord builds an audit record from a decision event.
func NewDecisionRecord(event *Event, resp *DecisionResponse) *DecisionRecord {
	rec := &DecisionRecord{
		EventID:        event.ID,
		TraceID:        event.TraceID,
		Environment:    resp.Environment,
		Action:         string(resp.Action),
		SafetyFiltered: resp.SafetyFiltered,
		Reason:         resp.Reason,
		DecidedAt:      event.Timestamp,
	}
	if resp.ProposedAction != nil {
		rec.ProposedAction = string(*resp.ProposedAction)
	}
	return rec
}

// DecisionStats aggregates audit records.
type DecisionStats struct {
	Total    int64                       `json:"total"`
	Filtered int64                       `json:"filtered"`
	ByAction map[string]map[string]int64 `json:"by_action"`
}
