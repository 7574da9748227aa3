// Package events publishes borrow lifecycle notifications to RabbitMQ so other
// services (reminders, reporting) can follow circulation without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

type Type string

const (
	BorrowCreated  Type = "borrow.created"
	BorrowReturned Type = "borrow.returned"
	BookDeleted    Type = "book.deleted"
)

type BorrowEvent struct {
	Type     Type      `json:"type"`
	RecordID string    `json:"recordId,omitempty"`
	BookID   string    `json:"bookId"`
	Person   string    `json:"person,omitempty"`
	Orphan   bool      `json:"orphan,omitempty"` // returned after the book was deleted
	At       time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev BorrowEvent) error
	Close() error
}

// Nop drops every event. Used when RABBITMQ_URL is not configured.
type Nop struct{}

func (Nop) Publish(context.Context, BorrowEvent) error { return nil }
func (Nop) Close() error                               { return nil }

type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex // amqp channels are not safe for concurrent publishes
}

// NewAMQP dials the broker and declares the durable queue events go to.
func NewAMQP(url, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("amqp declare %s: %w", queue, err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, queue: queue}, nil
}

// New returns an AMQP publisher, or Nop when url is empty.
func New(url, queue string) (Publisher, error) {
	if url == "" {
		return Nop{}, nil
	}
	return NewAMQP(url, queue)
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev BorrowEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    ev.At,
		Type:         string(ev.Type),
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
