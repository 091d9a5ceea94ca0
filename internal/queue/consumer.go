package queue

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/malo-app/malo-web/internal/logger"
)

const visitLogFile = "visits.log"

// StartVisitConsumer connects to RabbitMQ, declares the visit.requested
// queue (durable) and appends one line per event to dir/visits.log.  It
// reconnects with exponential backoff until ctx is cancelled.  Messages
// that cannot be handled are rejected without requeue.
func StartVisitConsumer(ctx context.Context, url, dir string) error {
	rlog := logger.Default().WithField("component", "visit-consumer")
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			rlog.WithError(err).Warnf("failed to dial broker; retrying in %s", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, dir)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		rlog.WithError(err).Warn("consume loop ended; reconnecting")
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, dir string) error {
	rlog := logger.Default().WithField("component", "visit-consumer")
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		rlog.WithError(err).Warn("set QoS failed")
	}
	if _, err := ch.QueueDeclare(VisitRequestedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(VisitRequestedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(dir, d.Body); err != nil {
				rlog.WithError(err).Error("handle message failed")
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func handleMessage(dir string, body []byte) error {
	var ev VisitRequestedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, visitLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(formatLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// formatLine renders one desk log line, newline terminated.
func formatLine(ev VisitRequestedEvent) string {
	return fmt.Sprintf("[%s] Visit requested | visit_id=%s | resident_id=%s | resident=%q | visitor=%q | visitor_username=%s | date=%s | purpose=%q\n",
		ev.RequestedAt, orDash(ev.VisitID), ev.ResidentID, ev.ResidentName, ev.VisitorName, ev.VisitorUsername, ev.VisitDate, ev.Purpose)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
