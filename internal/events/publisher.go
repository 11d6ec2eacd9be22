// Package events publishes workflow lifecycle events to Kafka for
// downstream consumers. Publishing is fire and forget: failures are
// logged, never surfaced to the caller.
package events

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"realty-service/internal/client"
	"realty-service/internal/util"
)

const (
	EventAgentRegistered  = "agent.registered"
	EventAgentApproved    = "agent.approved"
	EventAgentRejected    = "agent.rejected"
	EventPropertyListed   = "property.listed"
	EventPropertyApproved = "property.approved"
	EventPropertyRejected = "property.rejected"
	EventPropertyUpdated  = "property.updated"
	EventUserRegistered   = "user.registered"
	EventUserVerified     = "user.verified"
	EventPasswordReset    = "password.reset"
)

type WorkflowEvent struct {
	EventType string    `json:"event_type"`
	EntityID  string    `json:"entity_id"`
	ActorID   string    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	kafka *client.KafkaClient
}

// NewPublisher accepts a nil client; publishing becomes a no-op.
func NewPublisher(kafka *client.KafkaClient) *Publisher {
	return &Publisher{kafka: kafka}
}

func (p *Publisher) Publish(ctx context.Context, eventType, entityID, actorID string) {
	if p == nil || p.kafka == nil {
		return
	}

	event := WorkflowEvent{
		EventType: eventType,
		EntityID:  entityID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		util.Warn("Failed to marshal workflow event",
			zap.String("event_type", eventType),
			zap.Error(err))
		return
	}

	if err := p.kafka.PublishMessage(ctx, p.kafka.WorkflowTopic(), []byte(entityID), payload); err != nil {
		util.Warn("Failed to publish workflow event",
			zap.String("event_type", eventType),
			zap.String("entity_id", entityID),
			zap.Error(err))
	}
}
