package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/tripcost/internal/core/domain"
)

const (
	// EstimatesStream holds every computed estimate until the recorder acks it.
	EstimatesStream = "ESTIMATES"
	// SubjectEstimateComputed carries one JSON-encoded domain.Estimate.
	SubjectEstimateComputed = "estimates.computed"
	// SubjectEstimatesAll matches every estimate event, for relays.
	SubjectEstimatesAll = "estimates.>"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		return nil, err
	}

	return &Publisher{conn: conn, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      EstimatesStream,
		Subjects:  []string{SubjectEstimatesAll},
		Retention: nats.InterestPolicy,
		MaxAge:    7 * 24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

// PublishEstimate publishes a computed estimate on estimates.computed.
func (p *Publisher) PublishEstimate(ctx context.Context, estimate *domain.Estimate) error {
	data, err := json.Marshal(estimate)
	if err != nil {
		return err
	}
	// Msg-Id lets JetStream drop duplicates of a retried publish.
	_, err = p.js.Publish(SubjectEstimateComputed, data, nats.Context(ctx), nats.MsgId(estimate.ID))
	return err
}

// IsConnected reports whether the underlying connection is up.
func (p *Publisher) IsConnected() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
