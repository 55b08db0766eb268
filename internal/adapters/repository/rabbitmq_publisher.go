package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// alertLatencyBudget is the publish latency above which a warning is logged
const alertLatencyBudget = 15 * time.Second

// RabbitMQPublisher implements AlertPublisher for publishing alerts to RabbitMQ
// Includes retry logic and circuit breaker for resilience
type RabbitMQPublisher struct {
	conn          *amqp091.Connection
	channel       *amqp091.Channel
	queueName     string
	cb            *gobreaker.CircuitBreaker
	maxRetries    int
	retryDelay    time.Duration
	connMutex     sync.RWMutex
	reconnectCh   chan bool
	stopReconnect chan bool
	logger        *zap.Logger
}

// AlertEvent is the message published for a reading that requires attention
type AlertEvent struct {
	OwnerID   string                  `json:"owner_id"`
	Reading   *domain.Reading         `json:"reading"`
	Category  domain.SeverityCategory `json:"category"`
	Label     string                  `json:"label"`
	AlertType string                  `json:"alert_type"`
	Severity  string                  `json:"severity"`
	Timestamp time.Time               `json:"timestamp"`
}

// NewAlertEvent builds the alert message for a reading
func NewAlertEvent(reading *domain.Reading, category domain.SeverityCategory, now time.Time) AlertEvent {
	alertType := "hypertensive_crisis"
	switch {
	case reading.Systolic >= domain.CrisisSystolic && reading.Diastolic >= domain.CrisisDiastolic:
		alertType = "hypertensive_crisis_combined"
	case reading.Systolic >= domain.CrisisSystolic:
		alertType = "hypertensive_crisis_systolic"
	case reading.Diastolic >= domain.CrisisDiastolic:
		alertType = "hypertensive_crisis_diastolic"
	}

	return AlertEvent{
		OwnerID:   reading.OwnerID,
		Reading:   reading,
		Category:  category,
		Label:     category.Label(),
		AlertType: alertType,
		Severity:  "critical",
		Timestamp: now,
	}
}

// NewRabbitMQPublisher creates a new RabbitMQ publisher with circuit breaker
func NewRabbitMQPublisher(rabbitMQURL string, queueName string, breaker BreakerSettings, logger *zap.Logger) (*RabbitMQPublisher, error) {
	if queueName == "" {
		queueName = "bp_alerts"
	}

	publisher := &RabbitMQPublisher{
		queueName:     queueName,
		maxRetries:    3,
		retryDelay:    1 * time.Second,
		reconnectCh:   make(chan bool, 1),
		stopReconnect: make(chan bool),
		logger:        logger,
	}
	publisher.cb = gobreaker.NewCircuitBreaker(breakerSettings("rabbitmq", breaker, logger))

	if err := publisher.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go publisher.handleReconnection(rabbitMQURL)

	return publisher, nil
}

// connect establishes connection to RabbitMQ and declares the alert queue
func (p *RabbitMQPublisher) connect(rabbitMQURL string) error {
	conn, channel, err := dialQueue(rabbitMQURL, p.queueName, p.maxRetries, p.retryDelay, p.logger)
	if err != nil {
		return err
	}

	p.connMutex.Lock()
	p.conn = conn
	p.channel = channel
	p.connMutex.Unlock()

	p.logger.Info("alert publisher connected to RabbitMQ", zap.String("queue", p.queueName))
	return nil
}

// dialQueue dials RabbitMQ with retries, opens a channel and declares a durable queue
func dialQueue(rabbitMQURL, queueName string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp091.Connection, *amqp091.Channel, error) {
	var conn *amqp091.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp091.Dial(rabbitMQURL)
		if err == nil {
			break
		}
		logger.Warn("failed to connect to RabbitMQ",
			zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, err
	}

	_, err = channel.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, err
	}

	return conn, channel, nil
}

// handleReconnection handles automatic reconnection to RabbitMQ
func (p *RabbitMQPublisher) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-p.reconnectCh:
			p.logger.Info("attempting to reconnect alert publisher to RabbitMQ")
			p.connMutex.Lock()
			if p.channel != nil {
				p.channel.Close()
			}
			if p.conn != nil {
				p.conn.Close()
			}
			p.connMutex.Unlock()

			if err := p.connect(rabbitMQURL); err != nil {
				p.logger.Error("alert publisher reconnection failed", zap.Error(err))
			}
		case <-p.stopReconnect:
			return
		}
	}
}

// PublishAlert publishes an alert event for the reading
func (p *RabbitMQPublisher) PublishAlert(ctx context.Context, reading *domain.Reading, category domain.SeverityCategory) error {
	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.publishWithRetry(ctx, reading, category)
	})
	if err != nil {
		alertsPublishedTotal.WithLabelValues("error").Inc()
		return err
	}
	alertsPublishedTotal.WithLabelValues("success").Inc()
	return nil
}

func (p *RabbitMQPublisher) publishWithRetry(ctx context.Context, reading *domain.Reading, category domain.SeverityCategory) error {
	startTime := time.Now()

	event := NewAlertEvent(reading, category, startTime)
	p.logger.Info("alert publish attempt",
		zap.String("event", "alert_publish_attempt"),
		zap.String("owner_id", reading.OwnerID),
		zap.String("reading_id", reading.ID.String()),
		zap.String("alert_type", event.AlertType),
		zap.String("category", string(category)))

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert event: %w", err)
	}

	var lastErr error
	for i := 0; i < p.maxRetries; i++ {
		p.connMutex.RLock()
		ch := p.channel
		conn := p.conn
		p.connMutex.RUnlock()

		if ch == nil || conn == nil || conn.IsClosed() {
			p.requestReconnect()
			lastErr = fmt.Errorf("RabbitMQ connection is closed")
			time.Sleep(p.retryDelay)
			continue
		}

		err = ch.PublishWithContext(
			ctx,
			"",          // exchange
			p.queueName, // routing key
			false,       // mandatory
			false,       // immediate
			amqp091.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp091.Persistent,
				Timestamp:    startTime,
			},
		)
		if err == nil {
			if latency := time.Since(startTime); latency > alertLatencyBudget {
				p.logger.Warn("alert publishing latency exceeded budget", zap.Duration("latency", latency))
			}
			return nil
		}

		lastErr = err
		p.logger.Warn("failed to publish alert",
			zap.Int("attempt", i+1), zap.Int("max_attempts", p.maxRetries), zap.Error(err))

		if i < p.maxRetries-1 {
			p.requestReconnect()
			time.Sleep(p.retryDelay)
		}
	}

	return fmt.Errorf("failed to publish alert after %d retries: %w", p.maxRetries, lastErr)
}

func (p *RabbitMQPublisher) requestReconnect() {
	select {
	case p.reconnectCh <- true:
	default:
	}
}

// Close closes the RabbitMQ connection
func (p *RabbitMQPublisher) Close() error {
	close(p.stopReconnect)
	p.connMutex.Lock()
	defer p.connMutex.Unlock()

	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// Ensure RabbitMQPublisher implements the interface
var _ ports.AlertPublisher = (*RabbitMQPublisher)(nil)
