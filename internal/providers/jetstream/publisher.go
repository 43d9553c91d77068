package jetstream

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	natsjs "github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/adapter"
	"github.com/vicuna-trace/ledger/internal/domain"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/messaging"
)

const (
	// subjectPrefix is the root of every tokenization subject
	subjectPrefix = "tokenization"

	// duplicateWindow outlasts a sweeper retry of the same attempt
	duplicateWindow = 24 * time.Hour
)

// Config holds the configuration for NATS JetStream connection
type Config struct {
	URL            string
	StreamName     string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectionName string
}

type publisher struct {
	nc   adapter.NatsConn
	js   adapter.JetStream
	json adapter.JSON
}

// NewPublisher connects to NATS and makes sure the tokenization stream exists
func NewPublisher(ctx context.Context, cfg Config, natsJS adapter.NatsJetStream, jsonAdapter adapter.JSON) (messaging.Publisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, js, err := natsJS.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	p := &publisher{nc: nc, js: js, json: jsonAdapter}
	if err := p.ensureStream(ctx, cfg.StreamName); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

func (p *publisher) ensureStream(ctx context.Context, name string) error {
	err := p.js.CreateOrUpdateStream(ctx, natsjs.StreamConfig{
		Name:       name,
		Subjects:   []string{subjectPrefix + ".>"},
		Retention:  natsjs.LimitsPolicy,
		Storage:    natsjs.FileStorage,
		Duplicates: duplicateWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", name, err)
	}
	return nil
}

// PublishTokenizationEvent publishes a tokenization event to NATS JetStream
func (p *publisher) PublishTokenizationEvent(ctx context.Context, event *domain.TokenizationEvent) error {
	logger.DebugCtx(ctx, "Publishing tokenization event", zap.Any("event", event))

	data, err := p.json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ack, err := p.js.Publish(ctx, buildSubject(event), data, messageID(event))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if ack != nil && ack.Duplicate {
		logger.DebugCtx(ctx, "Tokenization event already published", zap.Uint64("sequence", ack.Sequence))
	}

	return nil
}

// messageID identifies the fact an event reports, so the reconciler and the API
// publishing the same settlement produce one stream message
func messageID(event *domain.TokenizationEvent) string {
	return fmt.Sprintf("%s:%d:%s", event.Type, event.ProductID, event.TransactionHash)
}

// buildSubject returns tokenization.product.{event_type}, e.g. tokenization.product.tokenized
func buildSubject(event *domain.TokenizationEvent) string {
	return fmt.Sprintf("%s.product.%s", subjectPrefix, event.Type)
}

// Close closes the NATS connection
func (p *publisher) Close() {
	if p.nc == nil {
		return
	}

	p.nc.Close()
}
