package lib

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
)

const (
	EVENT_TRANSACTION_SAVED     = "transactions.saved"
	EVENT_TRANSACTION_RECOVERED = "transactions.recovered"
	EVENT_ORDER_STATUS          = "orders.status"
)

func KafkaEnabled() bool {
	return os.Getenv("KAFKA_BROKER") != ""
}

func GetKafkaProducerConfig(clientId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	}
}

func GetKafkaConsumerConfig(groupId string) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"group.id":          groupId,
		"auto.offset.reset": "smallest",
		"retry.backoff.ms":  100,
	}
}

// DomainEvent is the envelope written to the events topic.
type DomainEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func NewDomainEvent(eventType string, data any) DomainEvent {
	return DomainEvent{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type EventPublisher interface {
	Publish(topic string, key string, payload any) error
	Close()
}

type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(clientId string) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(GetKafkaProducerConfig(clientId))
	if err != nil {
		log.Printf("Error on producer: %s\n", err.Error())
		return nil, err
	}
	go func() {
		for e := range p.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					log.Printf("[kafka] Delivery failed for %v: %s\n", ev.TopicPartition, ev.TopicPartition.Error.Error())
				}
			case kafka.Error:
				log.Printf("[kafka] Producer error: %s\n", ev.Error())
			}
		}
	}()
	return &KafkaPublisher{producer: p}, nil
}

func encodeMessage(topic string, key string, payload any) (*kafka.Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message for %s: %w", topic, err)
	}
	if key == "" {
		key = uuid.NewString()
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}, nil
}

func (p *KafkaPublisher) Publish(topic string, key string, payload any) error {
	msg, err := encodeMessage(topic, key, payload)
	if err != nil {
		return err
	}
	if err := p.producer.Produce(msg, nil); err != nil {
		log.Printf("Error sending data to queue %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}

// NoopPublisher drops every message. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(topic string, key string, payload any) error {
	return nil
}

func (NoopPublisher) Close() {}

var (
	publisher   EventPublisher
	publisherMu sync.Mutex
)

func GetEventPublisher() EventPublisher {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	if publisher != nil {
		return publisher
	}
	if !KafkaEnabled() {
		publisher = NoopPublisher{}
		return publisher
	}
	p, err := NewKafkaPublisher("bookstore-api")
	if err != nil {
		publisher = NoopPublisher{}
		return publisher
	}
	publisher = p
	return publisher
}

// NewEventPublisher replaces the publisher instance with a custom implementation
func NewEventPublisher(p EventPublisher) EventPublisher {
	publisherMu.Lock()
	defer publisherMu.Unlock()
	publisher = p
	return publisher
}

// KafkaConsumer polls topics in the background and hands every message to handler
// until ctx is canceled.
func KafkaConsumer(ctx context.Context, groupId string, topics []string, handler func(msg *kafka.Message)) error {
	log.Printf("Initializing kafka Consumer for %v...\n", topics)
	master, err := kafka.NewConsumer(GetKafkaConsumerConfig(groupId))
	if err != nil {
		log.Printf("Error on master: %s\n", err.Error())
		return err
	}
	if err := master.SubscribeTopics(topics, nil); err != nil {
		log.Printf("Error on consumer: %s\n", err.Error())
		master.Close()
		return err
	}
	go func() {
		defer master.Close()
		log.Println("[BACKGROUND]: waiting for messages...")
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			ev := master.Poll(100)
			switch e := ev.(type) {
			case *kafka.Message:
				handler(e)
			case kafka.Error:
				log.Printf("[kafka] Consumer error: %v\n", e)
				if e.IsFatal() {
					return
				}
			}
		}
	}()
	return nil
}

func KafkaCreateTopics(ctx context.Context, topics ...string) ([]kafka.TopicResult, error) {
	a, err := kafka.NewAdminClient(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
	})
	if err != nil {
		log.Printf("Error on AdminClient: %s\n", err.Error())
		return nil, err
	}
	defer a.Close()
	topicsDef := []kafka.TopicSpecification{}
	for _, topic := range topics {
		topicsDef = append(topicsDef, kafka.TopicSpecification{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		})
	}
	result, err := a.CreateTopics(ctx, topicsDef)
	if err != nil {
		log.Printf("Error creating topics: %s\n", err.Error())
		return nil, err
	}
	return result, nil
}
