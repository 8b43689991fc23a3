// Package queue_publisher publishes schedule domain events to RabbitMQ.
// Errors are logged and returned so callers can ignore publish failures
// without interrupting the main request flow; a lost notification must
// never fail a committed booking.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/gympoint/class-scheduler/internal/queue"
)

// PublishReservationConfirmed publishes a ReservationConfirmedEvent to the
// reservation.confirmed queue. Messages are marked persistent.
func PublishReservationConfirmed(ctx context.Context, event q.ReservationConfirmedEvent) error {
	return publish(ctx, q.ReservationConfirmedQueue, event)
}

// PublishInstanceCancelled publishes an InstanceCancelledEvent to the
// instance.cancelled queue.
func PublishInstanceCancelled(ctx context.Context, event q.InstanceCancelledEvent) error {
	return publish(ctx, q.InstanceCancelledQueue, event)
}

func publish(ctx context.Context, queueName string, event any) error {
	conn, err := amqp.Dial(q.BrokerURL())
	if err != nil {
		log.Printf("rabbitmq: dial failed: %v", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Printf("rabbitmq: channel open failed: %v", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	// Ensure the queue exists (idempotent). Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		log.Printf("rabbitmq: queue declare failed: %v", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("rabbitmq: marshal event failed: %v", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
