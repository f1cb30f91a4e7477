package kafka

import (
	"BrainShelf/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// Publisher 领域事件发布接口
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

type syncPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// newSaramaConfig 统一初始化 sarama.Config，避免代码重复
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Producer.Return.Successes = true
	c.Producer.RequiredAcks = sarama.WaitForLocal
	c.Producer.Timeout = 5 * time.Second

	return c
}

// NewPublisher 创建 Kafka 事件发布者。配置关闭时返回 nil，
// 调用方需要容忍 nil Publisher。
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enable {
		return nil, nil
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, newSaramaConfig(cfg))
	if err != nil {
		return nil, err
	}

	log.Info("Kafka producer initialized", "topic", cfg.Topic)
	return &syncPublisher{producer: producer, topic: cfg.Topic}, nil
}

func (s *syncPublisher) Publish(ctx context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, _, err = s.producer.SendMessage(&sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		log.ErrorContext(ctx, "Kafka publish failed", "type", event.Type, "err", err)
	}
	return err
}

func (s *syncPublisher) Close() error {
	return s.producer.Close()
}
