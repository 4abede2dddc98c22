package events

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// OrderCreatedHandler processes one decoded order.created payload.
type OrderCreatedHandler func(ctx context.Context, payload OrderCreatedPayload) error

func StartOrderCreatedConsumer(ctx context.Context, conn *amqp.Connection, consumerTag string, handle OrderCreatedHandler, log *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		OrderCreatedQueue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(OrderCreatedQueue, consumerTag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				log.Info("stopping order.created consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					log.Warn("order.created messages channel closed")
					return
				}
				if err := HandleOrderCreated(ctx, msg.Body, handle); err != nil {
					log.Error("order.created handling failed", zap.Error(err))
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

// HandleOrderCreated decodes and validates body before calling handle.
func HandleOrderCreated(ctx context.Context, body []byte, handle OrderCreatedHandler) error {
	var env OrderCreatedEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if err := env.Validate(OrderCreatedName, OrderCreatedVersion); err != nil {
		return err
	}
	return handle(ctx, env.Payload)
}
