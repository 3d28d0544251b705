package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/samirrijal/tripcost/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber connects to NATS and makes sure the estimates stream exists.
func NewSubscriber(url string) (*Subscriber, error) {
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
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeEstimates delivers every estimates.computed message to handler.
// Undecodable payloads are terminated, handler errors are redelivered up to 3 times.
func (s *Subscriber) SubscribeEstimates(ctx context.Context, handler func(ctx context.Context, estimate *domain.Estimate) error) error {
	sub, err := s.js.Subscribe(SubjectEstimateComputed, func(msg *nats.Msg) {
		var estimate domain.Estimate
		if err := json.Unmarshal(msg.Data, &estimate); err != nil {
			slog.Warn("drop malformed estimate event", "error", err)
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &estimate); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("estimate-recorder"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// IsConnected reports whether the underlying connection is up.
func (s *Subscriber) IsConnected() bool {
	return s.conn.IsConnected()
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
