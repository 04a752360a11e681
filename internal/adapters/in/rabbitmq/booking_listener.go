package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/clinic-booking-service/internal/config"
	"github.com/suchimauz/clinic-booking-service/internal/core/domain"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/in"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

// BookingListener принимает заявки на бронирование из очереди и гонит их
// через тот же конвейер, что и HTTP. Ответа отправителю нет: результат
// виден в хранилище и в уведомлении клиники.
type BookingListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.BookingUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

func NewBookingListener(useCase in.BookingUseCase, cfg *config.Config, logger out.LoggerPort) (*BookingListener, error) {
	if !cfg.RabbitMq.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMq.AmqpUri)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
			"url":   cfg.RabbitMq.AmqpUri,
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	return &BookingListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *BookingListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMq.QueueConfig.BookingQueueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	// Привязка к exchange нужна только если он задан
	if l.cfg.RabbitMq.QueueConfig.BookingQueueExchange != "" {
		err = l.channel.QueueBind(
			queue.Name,
			l.cfg.RabbitMq.QueueConfig.BookingQueueBind,
			l.cfg.RabbitMq.QueueConfig.BookingQueueExchange,
			false,
			nil,
		)
		if err != nil {
			return err
		}
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go l.consumeLoop(ctx, queue.Name, msgs)

	l.logger.Info("booking.queue.started", out.LogFields{
		"queue": queue.Name,
	})

	return nil
}

func (l *BookingListener) consumeLoop(ctx context.Context, queueName string, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				// Брокер закрыл канал поставки
				l.logger.Warn("booking.queue.closed", out.LogFields{
					"queue": queueName,
				})
				return
			}
			if err := l.processBookingMessage(ctx, msg); err != nil {
				// Инфраструктурная ошибка - заявка вернется в очередь
				msg.Nack(false, true)
				continue
			}
			msg.Ack(false)
		}
	}
}

func (l *BookingListener) processBookingMessage(ctx context.Context, msg amqp.Delivery) error {
	messageID := msg.MessageId
	if messageID == "" {
		messageID = uuid.NewString()
	}

	var req domain.SubmitRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		// Нечитаемое сообщение повторять бессмысленно
		l.logger.Warn("booking.message.unmarshal_failed", out.LogFields{
			"messageId": messageID,
			"error":     err.Error(),
		})
		return nil
	}

	admission, err := l.useCase.SubmitBooking(ctx, req)
	if err != nil {
		if domain.IsRejection(err) {
			// Отказ по вине клиента: подтверждаем без возврата в очередь
			l.logger.Warn("booking.message.rejected", out.LogFields{
				"messageId": messageID,
				"date":      req.Date,
				"time":      req.Time,
				"error":     err.Error(),
			})
			return nil
		}
		return err
	}

	l.logger.Info("booking.message.admitted", out.LogFields{
		"messageId": messageID,
		"bookingId": admission.Booking.ID,
		"persisted": admission.Persisted,
	})

	return nil
}

func (l *BookingListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}
