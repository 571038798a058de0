package producers

import (
	"context"
	"log/slog"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/config"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

// NewDataProducer возвращает продюсер Kafka или NoopProducer, если брокеры не заданы
func NewDataProducer(cfg *config.AppConfig, logger *slog.Logger) interfaces.DataProducer {
	if len(cfg.Kafka.Brokers) == 0 {
		logger.Info("брокеры Kafka не заданы, публикация отключена")
		return NoopProducer{}
	}
	logger.Info("публикация в Kafka", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return NewKafkaProducer(cfg.Kafka)
}

// NewKafkaProducer создает новый экземпляр продюсера Kafka
func NewKafkaProducer(cfg config.KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaProducer{writer: writer}
}

// Produce отправляет сообщение в Kafka; ключ - имя контроллера, поэтому сообщения
// одного контроллера попадают в одну партицию
func (p *KafkaProducer) Produce(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx,
		kafka.Message{
			Key:   key,
			Value: value,
		},
	)
}

// Close закрывает соединение с Kafka
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NoopProducer отбрасывает сообщения
type NoopProducer struct{}

func (NoopProducer) Produce(context.Context, []byte, []byte) error { return nil }
func (NoopProducer) Close() error                                  { return nil }
