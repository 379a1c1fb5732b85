// Package service composes the stores into the operations exposed over HTTP:
// it runs paginated listings inside read snapshots and publishes review
// events after changes commit.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/film-review/internal/queue"
)

// EventPublisher delivers review events.  Implementations must not block the
// caller for long; services treat delivery as best-effort.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.ReviewEvent) error
}

// NopPublisher drops every event.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.ReviewEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue.  Each publish
// dials its own connection so a broker outage never leaves a stale channel
// behind.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// Publish sends ev as a persistent JSON message on the default exchange.
func (p AMQPPublisher) Publish(ctx context.Context, ev queue.ReviewEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.Queue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

// publish sends ev in the background with its own deadline; a failure is
// logged and otherwise ignored.
func publish(p EventPublisher, ev queue.ReviewEvent) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, ev); err != nil {
			log.Warn().Err(err).Str("type", string(ev.Type)).Uint64("film_id", ev.FilmID).Msg("publish review event failed")
		}
	}()
}
