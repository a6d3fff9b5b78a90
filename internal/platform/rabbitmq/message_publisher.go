package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"heysera/internal/model"
)

// MessageJob is the queue envelope for one message append. A chat turn is
// published as two jobs, user first; the single consumer preserves order.
type MessageJob struct {
	SessionID string        `json:"session_id"`
	Message   model.Message `json:"message"`
}

// MessagePublisher defers message persistence to the store through a
// durable queue, keeping the chat request path off the disk write.
type MessagePublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewMessagePublisher(conn *amqp.Connection, queueName string) *MessagePublisher {
	return &MessagePublisher{
		conn:      conn,
		queueName: queueName,
	}
}

// AppendTurn publishes the user and assistant halves of a turn in order.
func (p *MessagePublisher) AppendTurn(ctx context.Context, sessionID string, user, assistant model.Message) error {
	if err := p.publish(ctx, MessageJob{SessionID: sessionID, Message: user}); err != nil {
		return err
	}
	return p.publish(ctx, MessageJob{SessionID: sessionID, Message: assistant})
}

func (p *MessagePublisher) publish(ctx context.Context, job MessageJob) error {
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

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal message job failed: %w", err)
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
		return fmt.Errorf("publish message job failed: %w", err)
	}
	return nil
}
