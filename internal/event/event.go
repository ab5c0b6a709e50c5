package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/oklog/ulid/v2"

	"github.com/nekogravitycat/link-catalog-backend/internal/metrics"
)

const (
	TypeResourcesCreated = "resources.created"
	TypeResourcesUpdated = "resources.updated"
	TypeResourcesDeleted = "resources.deleted"

	envelopeVersion = "1"
	streamName      = "LBS_RESOURCES"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	Version       string    `json:"version"`
	OccurredAt    time.Time `json:"occurredAt"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Payload       any       `json:"payload"`
}

// Publisher emits catalog change events.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// Noop discards events. It is used when NATS is not configured or unreachable.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

type correlationKey struct{}

// WithCorrelationID attaches a request correlation id to ctx so events carry it.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id stored by WithCorrelationID, or "".
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// NewEnvelope builds the envelope for one event.
func NewEnvelope(ctx context.Context, eventType string, payload any) Envelope {
	return Envelope{
		ID:            ulid.Make().String(),
		Type:          eventType,
		Version:       envelopeVersion,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: CorrelationID(ctx),
		Payload:       payload,
	}
}

// Subject is the NATS subject an event type is published on.
func Subject(prefix, eventType string) string {
	return prefix + "." + eventType
}

type natsPublisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	prefix string
}

// NewPublisher connects to NATS at url and makes sure the resources stream
// exists. An empty url, or any connection failure, yields a Noop publisher.
func NewPublisher(url, subjectPrefix string, logger *slog.Logger) Publisher {
	if url == "" {
		return Noop{}
	}

	nc, err := nats.Connect(url, nats.Name("link-catalog-backend"))
	if err != nil {
		logger.Warn("NATS connect failed, using noop publisher", "error", err)
		return Noop{}
	}

	js, err := nc.JetStream()
	if err != nil {
		logger.Warn("NATS JetStream context creation failed, using noop publisher", "error", err)
		nc.Close()
		return Noop{}
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ".resources.*"},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Discard:   nats.DiscardOld,
		Storage:   nats.FileStorage,
	})
	if err != nil {
		logger.Warn("NATS stream initialization failed, using noop publisher", "error", err)
		nc.Close()
		return Noop{}
	}

	return &natsPublisher{nc: nc, js: js, prefix: subjectPrefix}
}

func (p *natsPublisher) Publish(ctx context.Context, eventType string, payload any) (err error) {
	defer func() { metrics.ObservePublish(eventType, err) }()

	b, err := json.Marshal(NewEnvelope(ctx, eventType, payload))
	if err != nil {
		return fmt.Errorf("encode event failed: %w", err)
	}
	if _, err := p.js.Publish(Subject(p.prefix, eventType), b, nats.Context(ctx)); err != nil {
		return fmt.Errorf("publish %s failed: %w", eventType, err)
	}
	return nil
}

func (p *natsPublisher) Close() error {
	p.nc.Close()
	return nil
}
