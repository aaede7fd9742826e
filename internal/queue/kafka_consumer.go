package queue

import (
	"context"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/iliyamo/parkseva/internal/logger"
)

// StartKafkaConsumer reads booking events from topic as member of group
// and commits each offset after handling, whether or not the handler
// succeeded.  It returns when ctx is done.
func StartKafkaConsumer(ctx context.Context, brokers []string, topic, group string, handle Handler) error {
	if len(brokers) == 0 {
		return errors.New("kafka: at least one broker is required")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        group,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: 0,
		Logger:         kafka.LoggerFunc(func(string, ...any) {}),
		ErrorLogger:    kafka.LoggerFunc(logger.ErrorLogger.Printf),
	})
	defer func() { _ = reader.Close() }()
	logger.InfoLogger.Infof("booking-consumer: consuming kafka topic %s", topic)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.ErrorLogger.WithError(err).Warn("booking-consumer: kafka fetch failed")
			if !sleep(ctx, time.Second) {
				return ctx.Err()
			}
			continue
		}
		if err := Dispatch(ctx, msg.Value, handle); err != nil {
			logger.ErrorLogger.WithError(err).WithField("offset", msg.Offset).Error("booking-consumer: handle message failed")
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.ErrorLogger.WithError(err).Warn("booking-consumer: kafka commit failed")
		}
	}
}
