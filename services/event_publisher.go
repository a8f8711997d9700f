package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"rescueradar/models"
)

const (
	RoutingKeyReportCreated = "report.created"
	reconnectDelay          = 5 * time.Second
	publishTimeout          = 5 * time.Second
)

// EventPublisher fans report lifecycle events out to other systems.
type EventPublisher interface {
	PublishReportCreated(ctx context.Context, event models.ReportCreatedEvent) error
	HealthCheck() error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishReportCreated(context.Context, models.ReportCreatedEvent) error {
	return nil
}
func (NoopPublisher) HealthCheck() error { return nil }
func (NoopPublisher) Close() error       { return nil }

// RabbitMQPublisher publishes JSON events to a durable topic exchange.
type RabbitMQPublisher struct {
	mu           sync.RWMutex
	conn         *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
	url          string
	closed       chan struct{}
}

func NewRabbitMQPublisher(url, exchangeName string) (*RabbitMQPublisher, error) {
	conn, channel, err := dialExchange(url, exchangeName)
	if err != nil {
		return nil, err
	}

	p := &RabbitMQPublisher{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		url:          url,
		closed:       make(chan struct{}),
	}
	go p.handleReconnect(conn)

	logrus.WithField("exchange", exchangeName).Info("RabbitMQ publisher initialized")
	return p, nil
}

func dialExchange(url, exchangeName string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return conn, channel, nil
}

func (p *RabbitMQPublisher) PublishReportCreated(ctx context.Context, event models.ReportCreatedEvent) error {
	return p.publish(ctx, RoutingKeyReportCreated, event.ReportID, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey, messageID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.RLock()
	channel := p.channel
	p.mu.RUnlock()

	err = channel.PublishWithContext(
		ctx,
		p.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			MessageId:    messageID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"exchange":    p.exchangeName,
		"message_id":  messageID,
	}).Debug("Event published")
	return nil
}

func (p *RabbitMQPublisher) handleReconnect(conn *amqp.Connection) {
	for {
		closeErr, ok := <-conn.NotifyClose(make(chan *amqp.Error, 1))
		if !ok || closeErr == nil {
			return
		}
		logrus.WithError(closeErr).Error("RabbitMQ connection closed, reconnecting")

		for {
			select {
			case <-p.closed:
				return
			case <-time.After(reconnectDelay):
			}

			newConn, channel, err := dialExchange(p.url, p.exchangeName)
			if err != nil {
				logrus.WithError(err).Error("Failed to reconnect to RabbitMQ")
				continue
			}

			p.mu.Lock()
			p.conn = newConn
			p.channel = channel
			p.mu.Unlock()
			conn = newConn

			logrus.Info("Reconnected to RabbitMQ")
			break
		}
	}
}

func (p *RabbitMQPublisher) HealthCheck() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.conn == nil || p.conn.IsClosed() {
		return fmt.Errorf("RabbitMQ connection is closed")
	}
	if p.channel == nil {
		return fmt.Errorf("RabbitMQ channel is nil")
	}
	return nil
}

func (p *RabbitMQPublisher) Close() error {
	close(p.closed)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ channel")
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("close RabbitMQ connection: %w", err)
		}
	}
	logrus.Info("RabbitMQ publisher closed")
	return nil
}
