// Package queue_publisher publishes domain events to RabbitMQ.  Errors are
// logged and returned so that callers can ignore them without interrupting
// the request that produced the event.
package queue_publisher

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/malo-app/malo-web/internal/logger"
	q "github.com/malo-app/malo-web/internal/queue"
)

// defaultDialTimeout bounds the dial and handshake when ctx has no deadline.
const defaultDialTimeout = 5 * time.Second

// Publisher dials the broker per event.  Visit requests are rare enough
// that a long lived channel is not worth its reconnect handling.
type Publisher struct {
	URL string
}

func New(url string) *Publisher {
	return &Publisher{URL: url}
}

// PublishVisitRequested sends ev to the durable visit.requested queue as a
// persistent message.
func (p *Publisher) PublishVisitRequested(ctx context.Context, ev q.VisitRequestedEvent) error {
	rlog := logger.FromContext(ctx).WithField("queue", q.VisitRequestedQueue)
	if err := ctx.Err(); err != nil {
		return err
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(dialTimeout(ctx))})
	if err != nil {
		rlog.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		rlog.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(q.VisitRequestedQueue, true, false, false, false, nil); err != nil {
		rlog.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		rlog.WithError(err).Warn("rabbitmq: marshal event failed")
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.VisitRequestedQueue, false, false, pub); err != nil {
		rlog.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	return nil
}

// dialTimeout is the time left before ctx expires, or defaultDialTimeout
// when ctx carries no deadline.
func dialTimeout(ctx context.Context) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return defaultDialTimeout
	}
	if left := time.Until(deadline); left > 0 {
		return left
	}
	return time.Millisecond
}
