// Package service publishes domain events to the notification transport.
// Publish errors are logged and returned so callers can ignore them
// without interrupting the request.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/queue"
)

// defaultDialTimeout bounds the connect and handshake of a publish.
const defaultDialTimeout = 2 * time.Second

// AMQPPublisher publishes BookingConfirmed events to the durable
// booking.confirmed queue.  Each publish opens its own connection, which
// keeps the publisher stateless at the cost of a dial per booking.
type AMQPPublisher struct {
	URL string
	// DialTimeout caps connect plus handshake; the caller's deadline
	// shortens it further.
	DialTimeout time.Duration
}

func (p *AMQPPublisher) dialTimeout(ctx context.Context) time.Duration {
	d := p.DialTimeout
	if d <= 0 {
		d = defaultDialTimeout
	}
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < d {
			d = left
		}
	}
	return d
}

// Publish sends ev as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	timeout := p.dialTimeout(ctx)
	if timeout <= 0 {
		return ctx.Err()
	}
	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Dial:      amqp.DefaultDial(timeout),
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
	})
	if err != nil {
		logger.ErrorLogger.Warnf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.ErrorLogger.Warnf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(queue.BookingQueue, true, false, false, false, nil); err != nil {
		logger.ErrorLogger.Warnf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.BookingID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", queue.BookingQueue, false, false, pub); err != nil {
		logger.ErrorLogger.Warnf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
