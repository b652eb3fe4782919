package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"eden_passes_backend/pkg/utils"

	"github.com/IBM/sarama"
)

// Event types emitted by the services.
const (
	TypePassCreated     = "pass.created"
	TypePassUpdated     = "pass.updated"
	TypePassDeleted     = "pass.deleted"
	TypeCustomerCreated = "customer.created"
	TypeCustomerUpdated = "customer.updated"
	TypeCustomerDeleted = "customer.deleted"
)

// Event is a domain event. Key groups related events on one partition.
type Event struct {
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// Publisher delivers domain events after the originating write committed.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// KafkaPublisher publishes JSON encoded events to one topic.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewKafkaPublisher wraps an existing producer.
func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// DialKafka connects a synchronous producer to brokers.
func DialKafka(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are not configured")
	}
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Retry.Max = 3
	config.Producer.Timeout = 10 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("kafka: creating producer: %w", err)
	}
	utils.LogInfo("Kafka producer initialized", map[string]interface{}{"brokers": brokers, "topic": topic})
	return NewKafkaPublisher(producer, topic), nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("kafka: marshalling %s event: %w", event.Type, err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type)},
		},
	}
	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka: sending %s event: %w", event.Type, err)
	}
	utils.LogDebug("Event published", map[string]interface{}{
		"type": event.Type, "key": event.Key, "partition": partition, "offset": offset,
	})
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

// LogPublisher only logs events. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event Event) error {
	utils.LogDebug("Event", map[string]interface{}{"type": event.Type, "key": event.Key})
	return nil
}

func (LogPublisher) Close() error { return nil }
