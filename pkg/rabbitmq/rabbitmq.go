// Package rabbitmq carries the two message flows of the storefront: fire-
// and-forget role-convergence work and order-created events.
package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/streadway/amqp"

	"github.com/arhammunir1104/ecom-sub001/internal/models"
)

// Queue names. Both are durable.
const (
	RoleSyncQueue   = "role_sync_queue"
	OrderEventQueue = "order_event_queue"
)

// RoleSyncMessage asks the background consumer to mirror a role into the
// relational store.
type RoleSyncMessage struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
}

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient connects to RabbitMQ, opens a channel, and declares the queues.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{RoleSyncQueue, OrderEventQueue} {
		_, err = ch.QueueDeclare(
			queue,
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare %s: %w", queue, err)
		}
	}

	log.Println("RabbitMQ client connected, queues declared")
	return &Client{conn: conn, channel: ch}, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ client: %v", errs)
	}
	return nil
}

// publish sends a persistent JSON message to a queue via the default
// exchange.
func (c *Client) publish(queue string, payload interface{}) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	err = c.channel.Publish(
		"",    // exchange: default
		queue, // routing key: the queue name
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", queue, err)
	}
	return nil
}

// PublishRoleSync queues a role mirror for the background consumer. The
// identity resolver calls this fire-and-forget when admin authority is found
// only document-side.
func (c *Client) PublishRoleSync(uid string, role models.Role) error {
	return c.publish(RoleSyncQueue, RoleSyncMessage{UID: uid, Role: string(role)})
}

// PublishOrderCreated emits an order-created event for downstream consumers
// (inventory, mail).
func (c *Client) PublishOrderCreated(orderData map[string]interface{}) error {
	return c.publish(OrderEventQueue, orderData)
}

// consume registers a manually-acknowledged consumer on a queue. Messages
// whose handler errors are nacked and requeued.
func (c *Client) consume(queue string, handler func(msg amqp.Delivery) error) error {
	if c == nil || c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}
	msgs, err := c.channel.Consume(
		queue,
		"",    // consumer tag
		false, // auto-ack: manual acknowledgement
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	go func() {
		for msg := range msgs {
			if err := handler(msg); err != nil {
				log.Printf("Error processing message %d on %s: %v", msg.DeliveryTag, queue, err)
				if requeueErr := msg.Nack(false, true); requeueErr != nil {
					log.Printf("Error nacking message %d: %v", msg.DeliveryTag, requeueErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Error acking message %d: %v", msg.DeliveryTag, ackErr)
			}
		}
	}()
	return nil
}

// ConsumeRoleSync starts the role-convergence consumer.
func (c *Client) ConsumeRoleSync(handler func(msg RoleSyncMessage) error) error {
	return c.consume(RoleSyncQueue, func(msg amqp.Delivery) error {
		var m RoleSyncMessage
		if err := json.Unmarshal(msg.Body, &m); err != nil {
			// A malformed message can never succeed; drop it rather than
			// requeue forever.
			log.Printf("Dropping malformed role sync message: %v", err)
			return nil
		}
		return handler(m)
	})
}

// ConsumeOrderEvents starts the order-event consumer.
func (c *Client) ConsumeOrderEvents(handler func(msg amqp.Delivery) error) error {
	return c.consume(OrderEventQueue, handler)
}
