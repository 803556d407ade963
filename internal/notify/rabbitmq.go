package notify

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const offerRoutingKey = "booking.offer"

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitSink publishes offers to a topic exchange for the push gateway.
type RabbitSink struct {
	conn     *amqp.Connection
	ch       amqpPublisher
	exchange string
}

func NewRabbitSink(url, exchange string) (*RabbitSink, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &RabbitSink{conn: conn, ch: ch, exchange: exchange}, nil
}

func (s *RabbitSink) Send(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return s.ch.PublishWithContext(ctx, s.exchange, offerRoutingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.BookingID,
		Body:         body,
	})
}

func (s *RabbitSink) Close() error {
	if ch, ok := s.ch.(*amqp.Channel); ok && ch != nil {
		_ = ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
