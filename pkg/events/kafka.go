package events

import (
	"context"
	"fmt"
	"time"

	"actibook/pkg/kafka"
	kafka_config "actibook/pkg/kafka/config"
	"actibook/pkg/logger"

	"github.com/google/uuid"
)

const schemaVersion = "1"

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// NewKafkaPublisher builds a publisher over the shared Kafka producer.
// source names the publishing service in the message headers.
func NewKafkaPublisher(cfg *kafka_config.Config, topic, dlqTopic, source string, log *logger.Logger) (Publisher, error) {
	producer, err := kafka.NewProducer(cfg, topic, dlqTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking events producer: %w", err)
	}

	return &kafkaPublisher{
		producer: producer,
		source:   source,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg := kafka.NewMessage().
		WithKey(event.StudentID).
		WithValue(event).
		WithEventID(uuid.New().String()).
		WithEventType(event.Type).
		WithSource(p.source).
		WithSchemaVersion(schemaVersion).
		Build()

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish booking event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
		return err
	}

	p.log.Debug("Booking event published",
		"type", event.Type,
		"booking_id", event.BookingID,
		"student_id", event.StudentID,
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
