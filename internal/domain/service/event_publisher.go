package service

import "context"

// Platform event names carried on the bus.
const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
	EventUsageOverage = "usage.overage"
)

// PlatformEvent is the envelope published for downstream consumers
// (playbook triggers, analytics exports).
type PlatformEvent struct {
	RequestID string            `json:"request_id,omitempty"` // For distributed tracing
	Event     string            `json:"event"`
	OrgID     string            `json:"org_id"`
	Subject   string            `json:"subject"` // order ID, metric name, ...
	Payload   map[string]string `json:"payload,omitempty"`
}

// EventPublisher defines the interface for publishing events to a message queue.
type EventPublisher interface {
	// PublishEvent publishes a platform event for async processing.
	PublishEvent(ctx context.Context, event *PlatformEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
