// Package queue_publisher pushes audit events to RabbitMQ.  Publishing is
// best-effort: errors are logged and returned so callers can ignore them
// without interrupting the request that triggered the event.
package queue_publisher

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	q "github.com/motoshop/auth-service/internal/queue"
)

const (
	QueueLogin           = "auth.login"
	QueueUserCreated     = "user.created"
	QueueUserDeactivated = "user.deactivated"
)

// PublishLogin sends a LoginEvent to the auth.login queue.
func PublishLogin(ctx context.Context, event q.LoginEvent) error {
	return publish(ctx, QueueLogin, event)
}

// PublishUserCreated sends a UserCreatedEvent to the user.created queue.
func PublishUserCreated(ctx context.Context, event q.UserCreatedEvent) error {
	return publish(ctx, QueueUserCreated, event)
}

// PublishUserDeactivated sends a UserDeactivatedEvent to the
// user.deactivated queue.
func PublishUserDeactivated(ctx context.Context, event q.UserDeactivatedEvent) error {
	return publish(ctx, QueueUserDeactivated, event)
}

// publish dials the broker, declares the durable queue (idempotent) and
// publishes the event as a persistent JSON message.  When no broker URL is
// configured the event is silently dropped; auditing is optional.
func publish(ctx context.Context, queueName string, event any) error {
	url := os.Getenv("RABBITMQ_URL")
	if url == "" {
		url = os.Getenv("AMQP_URL")
	}
	if url == "" {
		return nil
	}
	conn, err := amqp.Dial(url)
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

	if _, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	); err != nil {
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
	if err := ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		pub,
	); err != nil {
		log.Printf("rabbitmq: publish failed: %v", err)
		return err
	}
	return nil
}
