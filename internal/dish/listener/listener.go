package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/dish"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	EventStopListed = "dish.stop_listed"
	EventRestored   = "dish.restored"
)

// Consumer is satisfied by *broker.KafkaConsumer.
type Consumer interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// StopListListener hides dishes the kitchen puts on the stop list and shows
// them again when they are restored.
type StopListListener struct {
	consumer Consumer
	uc       dish.UseCase
	logger   logger.ZapLogger
}

func NewStopListListener(consumer Consumer, uc dish.UseCase, logger logger.ZapLogger) *StopListListener {
	return &StopListListener{
		consumer: consumer,
		uc:       uc,
		logger:   logger,
	}
}

func (l *StopListListener) Start(ctx context.Context) {
	l.logger.Info("Starting stop-list Kafka listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stop-list Kafka listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type StopListEvent struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   StopListPayload `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type StopListPayload struct {
	DishID string `json:"dish_id"`
	Reason string `json:"reason,omitempty"`
}

func (l *StopListListener) processMessage(ctx context.Context, value []byte) {
	var event StopListEvent
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal stop-list event", zap.Error(err))
		return
	}

	var hidden bool
	switch event.EventType {
	case EventStopListed:
		hidden = true
	case EventRestored:
		hidden = false
	default:
		return
	}

	if event.Payload.DishID == "" {
		l.logger.Warn("Stop-list event without dish id", zap.String("event_id", event.EventID))
		return
	}

	l.logger.Info("Processing stop-list event",
		zap.String("event_type", event.EventType),
		zap.String("dish_id", event.Payload.DishID),
		zap.String("reason", event.Payload.Reason),
	)

	if err := l.uc.SetHidden(ctx, event.Payload.DishID, hidden); err != nil {
		l.logger.Error("Failed to apply stop-list event",
			zap.String("event_id", event.EventID),
			zap.String("dish_id", event.Payload.DishID),
			zap.Error(err),
		)
	}
}
