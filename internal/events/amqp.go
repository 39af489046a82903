package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// AMQP publishes events to a durable topic exchange and waits for broker confirms.
type AMQP struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	acks     <-chan amqp.Confirmation
	exchange string
	logger   *log.Logger

	mu sync.Mutex
}

// DialAMQP connects, declares the exchange and enables publisher confirms.
func DialAMQP(url, exchange string, logger *log.Logger) (*AMQP, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 1))

	return &AMQP{conn: conn, ch: ch, acks: acks, exchange: exchange, logger: logger}, nil
}

func (p *AMQP) PublishOrderConfirmed(ctx context.Context, evt OrderConfirmed) error {
	msg, err := orderConfirmedPublishing(evt)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyOrderConfirmed, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", RoutingKeyOrderConfirmed, err)
	}

	select {
	case conf := <-p.acks:
		if !conf.Ack {
			return errors.New("publish nack from broker")
		}
		p.logger.Printf("events: published %s order_id=%s", RoutingKeyOrderConfirmed, evt.OrderID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *AMQP) Close() error {
	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
	}
	return errors.Join(errs...)
}

func orderConfirmedPublishing(evt OrderConfirmed) (amqp.Publishing, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal order confirmed: %w", err)
	}
	return amqp.Publishing{
		DeliveryMode:  amqp.Persistent,
		ContentType:   "application/json",
		MessageId:     evt.OrderID + ":" + RoutingKeyOrderConfirmed,
		CorrelationId: evt.OrderID,
		Timestamp:     evt.ConfirmedAt.UTC(),
		Headers:       amqp.Table{"x-source": "order-service"},
		Body:          body,
	}, nil
}
