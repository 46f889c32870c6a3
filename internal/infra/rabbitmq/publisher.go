package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/motionlab/dance-analysis-service/internal/domain/entity"
	amqp "github.com/rabbitmq/amqp091-go"
)

const statusRoutingKey = "analysis.status"

// StatusPublisher emits job status events on a topic exchange.
type StatusPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewStatusPublisher(conn *amqp.Connection, exchange string) (*StatusPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open publisher channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &StatusPublisher{channel: ch, exchange: exchange}, nil
}

func (p *StatusPublisher) PublishStatus(ctx context.Context, msg entity.JobStatusMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal status message: %w", err)
	}

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		statusRoutingKey,
		false, false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
}

func (p *StatusPublisher) Close() error {
	return p.channel.Close()
}
