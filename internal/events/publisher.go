package events

import (
	"github.com/OldStager01/decision-brain/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

func (p *Publisher) DecisionMade(resp *models.DecisionResponse) {
	msg := "Decision: " + string(resp.Action)
	event := models.NewEvent(models.EventTypeDecisionMade, resp.Environment, msg).
		WithData(resp)
	p.publish(event)
}

func (p *Publisher) DecisionDowngraded(resp *models.DecisionResponse) {
	msg := "Safety downgrade: " + string(resp.Proposed()) + " -> " + string(resp.Action)
	event := models.NewEvent(models.EventTypeDecisionDowngraded, resp.Environment, msg).
		WithSeverity(models.SeverityWarning).
		WithData(resp)
	p.publish(event)
}

func (p *Publisher) RequestRejected(resp *models.DecisionResponse, kind string) {
	event := models.NewEvent(models.EventTypeRequestRejected, resp.Environment, resp.Reason).
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"kind":   kind,
			"reason": resp.Reason,
		})
	p.publish(event)
}
