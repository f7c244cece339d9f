// Package events publishes desk activity to a RabbitMQ topic exchange.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Exchange is the topic exchange every desk event is published to.
const Exchange = "funddesk.events"

// Routing keys.
const (
	ContributionCreated     = "contribution.created"
	RedemptionRequested     = "redemption.requested"
	RedemptionApproved      = "redemption.approved"
	RedemptionRejected      = "redemption.rejected"
	PerformanceDistributed  = "performance.distributed"
	ResultsReinvested       = "results.reinvested"
	UserCreated             = "user.created"
	UserVerificationToggled = "user.verification_toggled"
)

// Envelope wraps every published payload.
type Envelope struct {
	EventID     uuid.UUID `json:"event_id"`
	Type        string    `json:"type"`
	OccurredAt  time.Time `json:"occurred_at"`
	VirtualDate string    `json:"virtual_date"`
	Payload     any       `json:"payload"`
}

// NewEnvelope stamps a payload with a fresh event id.
func NewEnvelope(routingKey string, virtualDate time.Time, payload any) Envelope {
	return Envelope{
		EventID:     uuid.New(),
		Type:        routingKey,
		OccurredAt:  time.Now().UTC(),
		VirtualDate: virtualDate.Format("2006-01-02"),
		Payload:     payload,
	}
}

// Publisher is implemented by types that can publish events.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, body any) error
	Close()
}
