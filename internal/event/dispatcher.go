package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/audit"
	"github.com/fekuna/omnipos-menu-service/internal/auth"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/broker"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dispatchTimeout = 5 * time.Second

// Dispatcher fans committed catalog changes out to the broker and the audit
// log. Failures are logged and never reach the caller.
type Dispatcher struct {
	publisher broker.Publisher
	recorder  audit.Recorder
	logger    logger.ZapLogger
	timeout   time.Duration
}

// Option adjusts a Dispatcher.
type Option func(*Dispatcher)

// WithTimeout bounds each sink separately. The default is five seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		d.timeout = timeout
	}
}

func NewDispatcher(publisher broker.Publisher, recorder audit.Recorder, log logger.ZapLogger, opts ...Option) *Dispatcher {
	if publisher == nil {
		publisher = broker.NopPublisher{}
	}
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	d := &Dispatcher{
		publisher: publisher,
		recorder:  recorder,
		logger:    log,
		timeout:   dispatchTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Dispatch(ctx context.Context, eventType, entityType, entityID string, payload interface{}) *model.CatalogEvent {
	evt := &model.CatalogEvent{
		EventID:    uuid.New().String(),
		EventType:  eventType,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    auth.GetActorID(ctx),
		Payload:    payload,
		Timestamp:  time.Now().UTC(),
	}

	// the request may already be finished when we get here
	base := context.WithoutCancel(ctx)

	if data, err := json.Marshal(evt); err != nil {
		d.logger.Error("failed to encode catalog event", zap.String("event_type", eventType), zap.Error(err))
	} else {
		d.publish(base, evt, data)
	}

	recordCtx, cancel := context.WithTimeout(base, d.timeout)
	defer cancel()
	if err := d.recorder.Record(recordCtx, evt); err != nil {
		d.logger.Error("failed to record catalog audit",
			zap.String("event_type", eventType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
	}

	return evt
}

func (d *Dispatcher) publish(ctx context.Context, evt *model.CatalogEvent, data []byte) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.publisher.Publish(ctx, evt.EntityID, data); err != nil {
		d.logger.Error("failed to publish catalog event",
			zap.String("event_type", evt.EventType),
			zap.String("entity_id", evt.EntityID),
			zap.Error(err),
		)
	}
}
