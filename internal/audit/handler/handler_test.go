package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fekuna/omnipos-menu-service/internal/audit/handler"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	events    []model.CatalogEvent
	lastLimit int
}

func (m *memoryRecorder) Record(_ context.Context, e *model.CatalogEvent) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *memoryRecorder) ListByEntity(_ context.Context, entityID string, limit int) ([]model.CatalogEvent, error) {
	m.lastLimit = limit
	out := []model.CatalogEvent{}
	for _, e := range m.events {
		if e.EntityID == entityID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestListByEntity(t *testing.T) {
	rec := &memoryRecorder{}
	require.NoError(t, rec.Record(context.Background(), &model.CatalogEvent{EventType: model.EventDishCreated, EntityID: "d1"}))
	require.NoError(t, rec.Record(context.Background(), &model.CatalogEvent{EventType: model.EventDishRemoved, EntityID: "d2"}))

	r := chi.NewRouter()
	handler.NewAuditHandler(rec, logger.NewNop()).Mount(r)

	t.Run("Returns the events of one entity", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/d1", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data  []model.CatalogEvent `json:"data"`
			Total int                  `json:"total"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		assert.Equal(t, model.EventDishCreated, resp.Data[0].EventType)
		assert.Equal(t, 50, rec.lastLimit)
	})

	t.Run("Caps the limit", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/audit/d1?limit=100000", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 500, rec.lastLimit)
	})
}
