package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/navanithaadhav/Herbal-Hot/internal/domain"
)

type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokersSTR, topic string) *Producer {
	brokers := strings.Split(brokersSTR, ",")

	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
			Async:        false,
		},
	}
}

func (p *Producer) Close() error {
	return p.w.Close()
}

type orderEvent struct {
	Event      string       `json:"event"`
	OccurredAt time.Time    `json:"occurred_at"`
	Order      domain.Order `json:"order"`
}

// PublishOrderEvent emits one lifecycle event keyed by order id, so all
// events of one order land on the same partition in order.
func (p *Producer) PublishOrderEvent(ctx context.Context, event string, o *domain.Order) error {
	b, err := json.Marshal(orderEvent{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Order:      *o,
	})
	if err != nil {
		return err
	}

	return p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.ID.String()),
		Value: b,
		Headers: []kafka.Header{
			{Key: "content-type", Value: []byte("application/json")},
			{Key: "event", Value: []byte(event)},
		},
	})
}
