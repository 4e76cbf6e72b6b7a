// internal/messaging/rabbit.go
package messaging

import (
	"fmt"
	"log"

	"github.com/streadway/amqp"

	"tenant-onboarding/internal/metrics"
)

const (
	// OnboardingQueue carries submitted onboarding records to the workflow.
	OnboardingQueue = "onboarding_queue"
	// OnboardingDLQ receives deliveries whose processing failed.
	OnboardingDLQ = "onboarding_dlq"
)

type RabbitClient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	URL     string
}

func NewRabbitClient(url string) (*RabbitClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &RabbitClient{
		conn:    conn,
		channel: ch,
		URL:     url,
	}, nil
}

func (r *RabbitClient) GetChannel() *amqp.Channel {
	return r.channel
}

func (r *RabbitClient) GetConnection() *amqp.Connection {
	return r.conn
}

// DeclareOnboardingQueue creates the durable onboarding queue and its DLQ
func (r *RabbitClient) DeclareOnboardingQueue() error {
	// 1. DLQ
	_, err := r.channel.QueueDeclare(
		OnboardingDLQ,
		true, false, false, false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare DLQ: %w", err)
	}

	// 2. Main Queue with DLQ binding
	args := amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": OnboardingDLQ,
	}
	_, err = r.channel.QueueDeclare(
		OnboardingQueue,
		true, false, false, false,
		args,
	)
	if err != nil {
		return fmt.Errorf("declare main queue: %w", err)
	}

	log.Printf("[Rabbit] Onboarding queues declared")
	return nil
}

// Publish submits an onboarding record payload to the workflow queue. The
// caller does not wait for processing; delivery is at-least-once.
func (r *RabbitClient) Publish(body []byte) error {
	err := r.channel.Publish(
		"",              // default exchange
		OnboardingQueue, // routing key (queue name)
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to queue %s: %w", OnboardingQueue, err)
	}
	return nil
}

// Close cleans up connection and channel
func (r *RabbitClient) Close() error {
	if err := r.channel.Close(); err != nil {
		return err
	}
	if err := r.conn.Close(); err != nil {
		return err
	}
	return nil
}

func (r *RabbitClient) UpdateQueueDepth() {
	q, err := r.channel.QueueInspect(OnboardingQueue)
	if err != nil {
		log.Printf("[Rabbit] Failed to inspect onboarding queue: %v", err)
		return
	}

	metrics.QueueDepth.Set(float64(q.Messages))
}
