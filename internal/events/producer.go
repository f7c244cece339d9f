package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AMQPPublisher holds the RabbitMQ connection and channel for publishing.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewAMQPPublisher dials RabbitMQ and declares the desk exchange.
func NewAMQPPublisher(amqpURL string) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	p := &AMQPPublisher{conn: conn, channel: ch, exchange: Exchange}
	if err := p.declare(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *AMQPPublisher) declare() error {
	return p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil)
}

// reopen replaces a closed channel once.
func (p *AMQPPublisher) reopen() error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	p.channel = ch
	return p.declare()
}

// Publish sends body as JSON with the given routing key.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		log.Printf("[ERROR] events: marshal %s: %v", routingKey, err)
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         payload,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	if err == nil {
		return nil
	}

	log.Printf("[WARN] events: publish %s failed, reopening channel: %v", routingKey, err)
	if rerr := p.reopen(); rerr != nil {
		return errors.Join(err, rerr)
	}
	return p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
}

// Close releases channel and connection resources.
func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	// Stray characters before the scheme come from badly quoted env files.
	if idx := strings.Index(strings.ToLower(clean), "amqp"); idx > 0 {
		clean = clean[idx:]
	}
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}
