package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"viewtube/internal/model"
)

type ViewEventPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewViewEventPublisher(conn *amqp.Connection, queueName string) *ViewEventPublisher {
	return &ViewEventPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *ViewEventPublisher) Publish(ctx context.Context, event model.WatchEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal view event failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish view event failed: %w", err)
	}
	return nil
}
