package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrPublish = errors.New("events: failed to publish")

// KafkaPublisher публикует события в топик Kafka, ключ сообщения = ID агрегата
type KafkaPublisher struct {
	writer *kafka.Writer
	log    Logger
}

func NewKafkaPublisher(brokers []string, topic string, log Logger) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			MaxAttempts:  3,
			BatchTimeout: 50 * time.Millisecond,
			ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
				log.Error("kafka: "+msg, args...)
			}),
		},
		log: log,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", ErrPublish, e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.AggregateID),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %s id=%s: %v", ErrPublish, e.Type, e.AggregateID, err)
	}

	p.log.Info("Event published: type=%s, id=%s", e.Type, e.AggregateID)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher только пишет события в лог (events.enabled = false)
type LogPublisher struct {
	log Logger
}

func NewLogPublisher(log Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("Event: type=%s, id=%s", e.Type, e.AggregateID)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
