package audit

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/model"
)

type Recorder interface {
	Record(ctx context.Context, event *model.CatalogEvent) error
	ListByEntity(ctx context.Context, entityID string, limit int) ([]model.CatalogEvent, error)
}

type NopRecorder struct{}

func (NopRecorder) Record(context.Context, *model.CatalogEvent) error { return nil }

func (NopRecorder) ListByEntity(context.Context, string, int) ([]model.CatalogEvent, error) {
	return []model.CatalogEvent{}, nil
}
