package client

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"realty-service/internal/config"
	"realty-service/internal/util"
)

type KafkaClient struct {
	writer *kafka.Writer
	config *config.KafkaConfig
}

func NewKafkaClient(cfg *config.Config) (*KafkaClient, error) {
	kafkaConfig := cfg.Kafka

	writer := &kafka.Writer{
		Addr:         kafka.TCP(kafkaConfig.Brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		Compression:  kafka.Snappy,
	}

	util.Info("Kafka producer initialized",
		zap.Strings("brokers", kafkaConfig.Brokers),
		zap.String("workflow_topic", kafkaConfig.WorkflowTopic))

	return &KafkaClient{
		writer: writer,
		config: &kafkaConfig,
	}, nil
}

// PublishMessage writes a single keyed message to the given topic.
func (k *KafkaClient) PublishMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	msg := kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	}

	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish message to topic %s: %w", topic, err)
	}
	return nil
}

func (k *KafkaClient) WorkflowTopic() string {
	return k.config.WorkflowTopic
}

func (k *KafkaClient) HealthCheck(ctx context.Context) error {
	if len(k.config.Brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", k.config.Brokers[0])
	if err != nil {
		return fmt.Errorf("failed to dial kafka broker: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Brokers(); err != nil {
		return fmt.Errorf("failed to list kafka brokers: %w", err)
	}
	return nil
}

func (k *KafkaClient) Close() error {
	if k.writer != nil {
		if err := k.writer.Close(); err != nil {
			util.Error("failed to close Kafka writer", zap.Error(err))
			return err
		}
		util.Info("Kafka producer closed")
	}
	return nil
}
