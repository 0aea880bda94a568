package rabbitmq

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"lapak/internal/models"

	amqp "github.com/streadway/amqp"
)

// notificationQueue carries order confirmation and cancellation events for
// the email worker. Delivery is best-effort from the publisher's point of
// view; the order service logs and swallows publish failures.
const notificationQueue = "notification_queue"

// Event types published to the notification queue.
const (
	EventOrderConfirmed = "order.confirmed"
	EventOrderCancelled = "order.cancelled"
)

// Notification is the message body for an order notification.
type Notification struct {
	Event   string    `json:"event"`
	OrderID string    `json:"order_id"`
	UserID  string    `json:"user_id"`
	Email   string    `json:"email"`
	Total   int64     `json:"total"`
	Status  string    `json:"status"`
	SentAt  time.Time `json:"sent_at"`
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

// NewClient creates a new RabbitMQ client. It connects to RabbitMQ, sets up
// a channel and declares the notification queue.
func NewClient(cfg Config) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		notificationQueue, // name
		true,              // durable (persists messages across broker restarts)
		false,             // delete when unused
		false,             // exclusive (only one connection can use it)
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s: %w", notificationQueue, err)
	}

	log.Printf("RabbitMQ client connected and %s declared.", notificationQueue)

	return &Client{
		conn:    conn,
		channel: ch,
	}, nil
}

// Close closes the RabbitMQ connection and channel.
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
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// NotifyOrderConfirmed publishes an order confirmation event.
func (c *Client) NotifyOrderConfirmed(order *models.Order) error {
	return c.publishNotification(EventOrderConfirmed, order)
}

// NotifyOrderCancelled publishes an order cancellation event.
func (c *Client) NotifyOrderCancelled(order *models.Order) error {
	return c.publishNotification(EventOrderCancelled, order)
}

func (c *Client) publishNotification(event string, order *models.Order) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	body, err := json.Marshal(Notification{
		Event:   event,
		OrderID: order.ID,
		UserID:  order.UserID,
		Email:   order.Email,
		Total:   order.Total,
		Status:  string(order.Status),
		SentAt:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification to JSON: %w", err)
	}

	err = c.channel.Publish(
		"",                // exchange: default exchange
		notificationQueue, // routing key: the queue name
		false,             // mandatory: if true, returns message if it cannot be routed
		false,             // immediate: if true, returns message if it cannot be delivered to any consumer
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // Make message persistent
			Timestamp:    time.Now(),
		})
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}

	log.Printf(" [x] Sent %s for order %s", event, order.ID)
	return nil
}

// ConsumeNotifications starts delivering notification messages to the given
// handler. The handler's error decides whether the message is acked or
// requeued.
func (c *Client) ConsumeNotifications(messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	queue, err := c.channel.QueueDeclare(
		notificationQueue, // name
		true,              // durable
		false,             // delete when unused
		false,             // exclusive
		false,             // no-wait
		nil,               // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for consuming: %w", err)
	}

	msgs, err := c.channel.Consume(
		queue.Name, // queue
		"",         // consumer tag: unique identifier for the consumer
		false,      // auto-ack: set to false to manually acknowledge messages
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := messageHandler(msg); err != nil {
				log.Printf("Error processing notification (Tag: %d): %v", msg.DeliveryTag, err)
				if nackErr := msg.Nack(false, true); nackErr != nil {
					log.Printf("Failed to Nack message (Tag: %d): %v", msg.DeliveryTag, nackErr)
				}
				continue
			}
			if ackErr := msg.Ack(false); ackErr != nil {
				log.Printf("Failed to Ack message (Tag: %d): %v", msg.DeliveryTag, ackErr)
			}
		}
	}()

	return nil
}
