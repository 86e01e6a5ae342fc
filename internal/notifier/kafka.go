package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaNotifier publishes alerts to a Kafka topic for downstream consumers.
type KafkaNotifier struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaNotifier creates a producer for topic on the given brokers.
func NewKafkaNotifier(brokers []string, topic string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			WriteTimeout:           10 * time.Second,
			AllowAutoTopicCreation: true,
		},
		topic: topic,
	}
}

func (k *KafkaNotifier) Name() string { return "kafka" }

func (k *KafkaNotifier) Send(ctx context.Context, msg Message) error {
	km, err := kafkaMessage(msg)
	if err != nil {
		return err
	}
	if err := k.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", k.topic, err)
	}
	return nil
}

// Close flushes and closes the producer.
func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

// kafkaMessage keys by symbol so alerts for one market stay ordered in a partition.
func kafkaMessage(msg Message) (kafka.Message, error) {
	p := newAlertPayload(msg)
	value, err := json.Marshal(p)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: marshal: %w", err)
	}
	key := p.Symbol
	if key == "" {
		key = p.Subject
	}
	return kafka.Message{Key: []byte(key), Value: value}, nil
}
