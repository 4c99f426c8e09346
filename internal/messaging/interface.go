package messaging

import "context"

// PublisherInterface is what the patient service needs from a broker.
// Publish on a nil *Publisher is a no-op.
type PublisherInterface interface {
	Publish(ctx context.Context, routingKey string, eventData interface{}) error
	Close() error
}

var _ PublisherInterface = (*Publisher)(nil)
