package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/bloodpressure-service/internal/core/domain"
	"github.com/IANDYI/bloodpressure-service/internal/core/ports"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ReadingSubmission is a reading pushed by a device gateway or companion app
// measured_at may be omitted, in which case the time of consumption is used
type ReadingSubmission struct {
	OwnerID    string    `json:"owner_id"`
	Systolic   int       `json:"systolic"`
	Diastolic  int       `json:"diastolic"`
	Pulse      int       `json:"pulse"`
	MeasuredAt time.Time `json:"measured_at"`
}

// ReadingConsumer consumes reading submissions from RabbitMQ and records them
// Messages are acknowledged only after the reading is stored
type ReadingConsumer struct {
	conn           *amqp091.Connection
	channel        *amqp091.Channel
	queueName      string
	readingService ports.ReadingService
	connMutex      sync.RWMutex
	reconnectCh    chan bool
	stopReconnect  chan bool
	maxRetries     int
	retryDelay     time.Duration
	consumingCtx   context.Context
	consumingMutex sync.Mutex
	isConsuming    bool
	logger         *zap.Logger
}

// NewReadingConsumer creates a new RabbitMQ consumer for reading submissions
func NewReadingConsumer(rabbitMQURL string, queueName string, readingService ports.ReadingService, logger *zap.Logger) (*ReadingConsumer, error) {
	if queueName == "" {
		queueName = "bp_reading_submissions"
	}

	consumer := &ReadingConsumer{
		queueName:      queueName,
		readingService: readingService,
		maxRetries:     3,
		retryDelay:     1 * time.Second,
		reconnectCh:    make(chan bool, 1),
		stopReconnect:  make(chan bool),
		logger:         logger,
	}

	if err := consumer.connect(rabbitMQURL); err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	go consumer.handleReconnection(rabbitMQURL)

	return consumer, nil
}

func (c *ReadingConsumer) connect(rabbitMQURL string) error {
	conn, channel, err := dialQueue(rabbitMQURL, c.queueName, c.maxRetries, c.retryDelay, c.logger)
	if err != nil {
		return err
	}

	c.connMutex.Lock()
	c.conn = conn
	c.channel = channel
	c.connMutex.Unlock()

	c.logger.Info("reading consumer connected to RabbitMQ", zap.String("queue", c.queueName))
	return nil
}

// handleReconnection reconnects and resumes consuming with the original context
func (c *ReadingConsumer) handleReconnection(rabbitMQURL string) {
	for {
		select {
		case <-c.reconnectCh:
			c.logger.Info("attempting to reconnect reading consumer to RabbitMQ")
			c.connMutex.Lock()
			if c.channel != nil && !c.channel.IsClosed() {
				c.channel.Close()
			}
			if c.conn != nil && !c.conn.IsClosed() {
				c.conn.Close()
			}
			c.connMutex.Unlock()

			if err := c.connect(rabbitMQURL); err != nil {
				c.logger.Error("reading consumer reconnection failed", zap.Error(err))
				time.Sleep(5 * time.Second)
				select {
				case c.reconnectCh <- true:
				default:
				}
				continue
			}

			c.consumingMutex.Lock()
			ctx := c.consumingCtx
			restart := ctx != nil && ctx.Err() == nil && !c.isConsuming
			c.consumingMutex.Unlock()
			if restart {
				if err := c.StartConsuming(ctx); err != nil {
					c.logger.Error("failed to restart reading consumer", zap.Error(err))
				}
			}
		case <-c.stopReconnect:
			return
		}
	}
}

// StartConsuming registers the consumer and processes deliveries in a background goroutine
// Calling it while already consuming is a no-op
func (c *ReadingConsumer) StartConsuming(ctx context.Context) error {
	c.consumingMutex.Lock()
	if c.isConsuming {
		c.consumingMutex.Unlock()
		c.logger.Info("reading consumer already running, skipping duplicate start")
		return nil
	}
	c.isConsuming = true
	c.consumingCtx = ctx
	c.consumingMutex.Unlock()

	msgs, consumerTag, err := c.register()
	if err != nil {
		c.setConsuming(false)
		return err
	}

	c.logger.Info("reading consumer started",
		zap.String("consumer_tag", consumerTag), zap.String("queue", c.queueName))

	go c.consume(ctx, msgs)

	return nil
}

// consume processes deliveries until ctx is cancelled or the channel closes
func (c *ReadingConsumer) consume(ctx context.Context, msgs <-chan amqp091.Delivery) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("reading consumer context cancelled")
			c.setConsuming(false)
			return
		case msg, ok := <-msgs:
			if !ok {
				c.logger.Warn("reading consumer channel closed, attempting reconnection")
				c.requestReconnect()
				return
			}
			c.processMessage(ctx, msg)
		}
	}
}

// requestReconnect marks the consumer stopped before signalling the reconnect loop,
// so a reconnect that completes immediately still restarts consumption
func (c *ReadingConsumer) requestReconnect() {
	c.setConsuming(false)
	select {
	case c.reconnectCh <- true:
	default:
	}
}

func (c *ReadingConsumer) register() (<-chan amqp091.Delivery, string, error) {
	c.connMutex.RLock()
	channel := c.channel
	conn := c.conn
	c.connMutex.RUnlock()

	if channel == nil || channel.IsClosed() || conn == nil || conn.IsClosed() {
		return nil, "", fmt.Errorf("RabbitMQ connection is closed")
	}

	// One unacknowledged delivery at a time
	if err := channel.Qos(1, 0, false); err != nil {
		return nil, "", fmt.Errorf("failed to set QoS: %w", err)
	}

	consumerTag := fmt.Sprintf("reading-consumer-%d", time.Now().UnixNano())
	msgs, err := channel.Consume(
		c.queueName, // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return nil, "", fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, consumerTag, nil
}

func (c *ReadingConsumer) setConsuming(v bool) {
	c.consumingMutex.Lock()
	c.isConsuming = v
	c.consumingMutex.Unlock()
}

// processMessage records one submission
// Malformed or invalid submissions are dropped, anything else is requeued
func (c *ReadingConsumer) processMessage(ctx context.Context, msg amqp091.Delivery) {
	start := time.Now()
	status := c.handle(ctx, msg)
	submissionsConsumedTotal.WithLabelValues(status).Inc()
	submissionConsumeDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func (c *ReadingConsumer) handle(ctx context.Context, msg amqp091.Delivery) string {
	var submission ReadingSubmission
	if err := json.Unmarshal(msg.Body, &submission); err != nil {
		c.logger.Warn("failed to unmarshal reading submission", zap.Error(err))
		c.nack(msg, false)
		return "rejected"
	}

	reading, err := c.readingService.RecordReading(ctx, submission.OwnerID, ports.ReadingInput{
		Systolic:   submission.Systolic,
		Diastolic:  submission.Diastolic,
		Pulse:      submission.Pulse,
		MeasuredAt: submission.MeasuredAt,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidReading) || errors.Is(err, domain.ErrMissingOwner) {
			c.logger.Warn("invalid reading submission",
				zap.String("owner_id", submission.OwnerID), zap.Error(err))
			c.nack(msg, false)
			return "rejected"
		}
		c.logger.Error("failed to record reading submission",
			zap.String("owner_id", submission.OwnerID), zap.Error(err))
		c.nack(msg, true)
		return "requeued"
	}

	c.logger.Info("recorded reading submission",
		zap.String("reading_id", reading.ID.String()),
		zap.String("owner_id", reading.OwnerID))

	// A failed ack means redelivery, which records a duplicate reading
	if err := msg.Ack(false); err != nil {
		c.logger.Error("failed to acknowledge reading submission", zap.Error(err))
	}
	return "success"
}

func (c *ReadingConsumer) nack(msg amqp091.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		c.logger.Error("failed to nack reading submission", zap.Bool("requeue", requeue), zap.Error(err))
	}
}

// Close stops reconnection and closes the RabbitMQ connection
// The consuming context is cancelled by the caller during shutdown
func (c *ReadingConsumer) Close() error {
	close(c.stopReconnect)
	c.setConsuming(false)

	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if c.channel != nil && !c.channel.IsClosed() {
		if err := c.channel.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ channel", zap.Error(err))
		}
	}
	if c.conn != nil && !c.conn.IsClosed() {
		if err := c.conn.Close(); err != nil {
			c.logger.Warn("error closing RabbitMQ connection", zap.Error(err))
		}
	}

	c.logger.Info("reading consumer closed")
	return nil
}
