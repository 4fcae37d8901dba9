package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/deducta-loan-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

type BatchReqMessageProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new batch request producer and ensures topic exists
func NewBatchReqMessageProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*BatchReqMessageProducer, error) {
	if cfg.BatchTopic == "" {
		return nil, fmt.Errorf("kafka batch topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for batch request producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.BatchTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure batch topic %s exists for batch request producer: %w", cfg.BatchTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.BatchTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.BatchTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.BatchTopic, "count", len(messages))
			}
		},
	}

	return &BatchReqMessageProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.BatchTopic,
	}, nil
}

func (p *BatchReqMessageProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for batch request producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message via batch request producer",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via batch request producer: %w", p.topic, err)
	}

	p.logger.Debug("Published message via batch request producer",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *BatchReqMessageProducer) Close() error {
	p.logger.Info("Closing batch request Kafka message producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close api gateway kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
