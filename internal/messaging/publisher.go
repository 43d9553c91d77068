package messaging

import (
	"context"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// Publisher defines the interface for publishing tokenization events to the message broker
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishTokenizationEvent publishes a tokenization event to the message broker
	PublishTokenizationEvent(ctx context.Context, event *domain.TokenizationEvent) error
	// Close closes the connection
	Close()
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event, used when no broker is configured
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) PublishTokenizationEvent(context.Context, *domain.TokenizationEvent) error {
	return nil
}

func (noopPublisher) Close() {}
