package producer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/vladbogun1/tg-shop-miniapp/internal/service"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	eventOrderCreated       = "order.created"
	eventOrderStatusChanged = "order.status_changed"
)

type envelope struct {
	Type       string `json:"type"`
	OccurredAt string `json:"occurred_at"`
	Payload    any    `json:"payload"`
}

// KafkaProducer публикует события заказов в один топик, ключ — id заказа.
type KafkaProducer struct {
	writer *kafka.Writer
	log    *zap.Logger
}

func NewKafkaProducer(brokers []string, topic string, log *zap.Logger) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: 5 * time.Second,
	}
	log.Info("Kafka-продюсер инициализирован", zap.Strings("brokers", brokers), zap.String("topic", topic))
	return &KafkaProducer{writer: writer, log: log}
}

func (p *KafkaProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.publish(ctx, e.OrderID.String(), eventOrderCreated, e)
}

func (p *KafkaProducer) PublishOrderStatusChanged(ctx context.Context, e service.OrderStatusChangedEvent) error {
	return p.publish(ctx, e.OrderID.String(), eventOrderStatusChanged, e)
}

func (p *KafkaProducer) publish(ctx context.Context, key, eventType string, payload any) error {
	value, err := json.Marshal(envelope{
		Type:       eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Payload:    payload,
	})
	if err != nil {
		return err
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.log.Error("Не удалось опубликовать событие",
			zap.String("type", eventType), zap.String("key", key), zap.Error(err))
		return err
	}
	p.log.Debug("Событие опубликовано", zap.String("type", eventType), zap.String("key", key))
	return nil
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
