package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/parkseva/internal/config"
	"github.com/iliyamo/parkseva/internal/logger"
	"github.com/iliyamo/parkseva/internal/queue"
)

// Publisher hands a BookingConfirmed event to the notification transport.
type Publisher interface {
	Publish(ctx context.Context, ev queue.BookingConfirmedEvent) error
}

// DirectPublisher skips the broker and runs handle in a goroutine with its
// own timeout, so a slow provider never holds up the request.
type DirectPublisher struct {
	Handle  queue.Handler
	Timeout time.Duration
}

func (p *DirectPublisher) Publish(_ context.Context, ev queue.BookingConfirmedEvent) error {
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := p.Handle(ctx, ev); err != nil {
			logger.ErrorLogger.WithError(err).WithField("booking_id", ev.BookingID).Warn("notify: direct dispatch failed")
		}
	}()
	return nil
}

// NopPublisher drops events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, queue.BookingConfirmedEvent) error { return nil }

// NewPublisher selects the transport named by cfg.Transport.  The returned
// close function releases the transport and is never nil.
func NewPublisher(cfg config.NotifyConfig, handle queue.Handler) (Publisher, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Transport {
	case "", "rabbitmq", "amqp":
		return &AMQPPublisher{URL: cfg.AMQPURL, DialTimeout: defaultDialTimeout}, noop, nil
	case "kafka":
		p, err := NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, noop, err
		}
		return p, p.Close, nil
	case "direct":
		return &DirectPublisher{Handle: handle, Timeout: 3 * cfg.HTTPTimeout}, noop, nil
	case "none":
		return NopPublisher{}, noop, nil
	}
	return nil, noop, fmt.Errorf("unknown NOTIFY_TRANSPORT %q", cfg.Transport)
}

// StartConsumer runs the consumer matching cfg.Transport until ctx is done.
// Transports without a broker return immediately.
func StartConsumer(ctx context.Context, cfg config.NotifyConfig, handle queue.Handler) error {
	switch cfg.Transport {
	case "", "rabbitmq", "amqp":
		return queue.StartBookingConsumer(ctx, cfg.AMQPURL, handle)
	case "kafka":
		return queue.StartKafkaConsumer(ctx, cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, handle)
	}
	return nil
}
