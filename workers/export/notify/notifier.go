// Package notify publishes export run outcomes so downstream
// collaborators (the alerting mailer, dashboards) can react without
// this service knowing about them.
package notify

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Event is the outcome record published after every export run.
type Event struct {
	RunID       string    `json:"run_id"`
	Status      string    `json:"status"` // success | failed | no_orders
	Message     string    `json:"message"`
	OrderCount  int       `json:"order_count"`
	OrderFile   string    `json:"order_file,omitempty"`
	PackingFile string    `json:"packing_file,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Notifier interface {
	Notify(event Event) error
}

// KafkaNotifier publishes events as JSON to a Kafka topic with a
// synchronous producer, so a dropped event is reported back to the
// worker rather than silently lost.
type KafkaNotifier struct {
	logger   *zap.Logger
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaNotifier(logger *zap.Logger, brokers []string, topic string) (*KafkaNotifier, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	return &KafkaNotifier{logger: logger, producer: producer, topic: topic}, nil
}

func (n *KafkaNotifier) Notify(event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	partition, offset, err := n.producer.SendMessage(&sarama.ProducerMessage{
		Topic: n.topic,
		Key:   sarama.StringEncoder(event.RunID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return err
	}

	n.logger.Info("Published export event",
		zap.String("status", event.Status),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.producer.Close()
}

// NopNotifier stands in when no brokers are configured.
type NopNotifier struct{}

func (NopNotifier) Notify(Event) error { return nil }
