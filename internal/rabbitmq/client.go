package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GoArmGo/geeklib/internal/config"
	"github.com/GoArmGo/geeklib/internal/messaging/payloads"
	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const publishTimeout = 5 * time.Second

// Client представляет собой клиент RabbitMQ
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
	logger  *slog.Logger
}

// NewClient подключается к RabbitMQ и объявляет durable-очередь событий
func NewClient(cfg config.RabbitMQConfig, logger *slog.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	// идемпотентно: очередь создаётся, только если её нет
	q, err := ch.QueueDeclare(
		cfg.QueueName, // name
		true,          // durable
		false,         // delete when unused
		false,         // exclusive
		false,         // no-wait
		nil,           // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare a queue: %w", err)
	}

	logger.Info("connected to RabbitMQ", "queue", q.Name, "messages", q.Messages)

	return &Client{conn: conn, channel: ch, queue: q, logger: logger}, nil
}

// Close закрывает канал и соединение RabbitMQ
func (c *Client) Close() {
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ channel", "error", err)
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			c.logger.Error("error closing RabbitMQ connection", "error", err)
		}
	}
	c.logger.Info("RabbitMQ connection closed")
}

// PublishLibraryEvent реализует ports.LibraryEventPublisher.
func (c *Client) PublishLibraryEvent(ctx context.Context, event payloads.LibraryEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = c.channel.PublishWithContext(
		publishCtx,
		"",           // exchange
		c.queue.Name, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.OccurredAt,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish a message: %w", err)
	}

	c.logger.Debug("library event published", "queue", c.queue.Name, "id", event.ID, "type", event.Type)
	return nil
}

// ErrDeliveryClosed — брокер закрыл канал доставки (обрыв соединения, удаление очереди).
var ErrDeliveryClosed = errors.New("RabbitMQ delivery channel closed")

// StartConsumingLibraryEvents реализует ports.LibraryEventConsumer.
// Сообщения подтверждаются вручную: битый JSON отбрасывается,
// ошибка обработчика возвращает сообщение в очередь.
// Возвращаемый канал получает ошибку, если потребление прервалось не по ctx,
// и закрывается, когда потребитель остановлен.
func (c *Client) StartConsumingLibraryEvents(ctx context.Context, handler func(context.Context, payloads.LibraryEvent) error) (<-chan error, error) {
	msgs, err := c.channel.Consume(
		c.queue.Name, // queue
		"",           // consumer
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register a consumer: %w", err)
	}

	c.logger.Info("consumer registered", "queue", c.queue.Name)

	stopped := make(chan error, 1)
	go func() {
		defer close(stopped)
		if err := consumeDeliveries(ctx, msgs, handler, c.logger); err != nil {
			stopped <- err
		}
	}()

	return stopped, nil
}

// consumeDeliveries обрабатывает сообщения до отмены ctx (nil)
// или закрытия канала доставки (ErrDeliveryClosed).
func consumeDeliveries(ctx context.Context, msgs <-chan amqp.Delivery, handler func(context.Context, payloads.LibraryEvent) error, logger *slog.Logger) error {
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				logger.Error("RabbitMQ delivery channel closed, stopping consumer")
				return ErrDeliveryClosed
			}
			processDelivery(ctx, msg.Body, msg, handler, logger)
		case <-ctx.Done():
			logger.Info("context cancelled, stopping RabbitMQ consumer")
			return nil
		}
	}
}

// acknowledger — часть amqp.Delivery, нужная для подтверждения
type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func processDelivery(ctx context.Context, body []byte, ack acknowledger, handler func(context.Context, payloads.LibraryEvent) error, logger *slog.Logger) {
	var event payloads.LibraryEvent
	if err := json.Unmarshal(body, &event); err != nil {
		logger.Error("error unmarshalling message", "error", err, "body", string(body))
		if err := ack.Nack(false, false); err != nil {
			logger.Error("error NACKing message after unmarshal failure", "error", err)
		}
		return
	}

	start := time.Now()
	if err := handler(ctx, event); err != nil {
		logger.Error("error processing message", "error", err, "id", event.ID)
		if err := ack.Nack(false, true); err != nil {
			logger.Error("error NACKing message after processing failure", "error", err)
		}
		return
	}

	if err := ack.Ack(false); err != nil {
		logger.Error("error ACKing message", "error", err)
		return
	}
	logger.Info("message processed", "id", event.ID, "duration_ms", time.Since(start).Milliseconds())
}
