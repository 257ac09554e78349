package usecase

import (
	"context"
	"encoding/json"

	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
	"go.uber.org/zap"
)

const indexName = "dishes"

const indexMapping = `{
	"mappings": {
		"properties": {
			"category_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"price": { "type": "double" },
			"is_hidden": { "type": "boolean" },
			"number": { "type": "integer" },
			"created_at": { "type": "date" },
			"updated_at": { "type": "date" }
		}
	}
}`

func (uc *dishUseCase) syncToElastic(ctx context.Context, d *model.Dish) {
	if uc.es == nil {
		return
	}

	if err := uc.es.CreateIndex(ctx, indexName, indexMapping); err != nil {
		uc.logger.Error("failed to ensure dish index", zap.Error(err))
		return
	}

	doc := *d
	doc.Category = nil
	if err := uc.es.Index(ctx, indexName, d.ID, doc); err != nil {
		uc.logger.Error("failed to index dish", zap.String("dish_id", d.ID), zap.Error(err))
	}
}

// reindexNumbers refreshes the documents of dishes renumbered by a committed
// mutation from their stored rows.
func (uc *dishUseCase) reindexNumbers(ctx context.Context, changes []ordering.Item) {
	if uc.es == nil {
		return
	}
	for _, it := range changes {
		d, err := uc.repo.FindByID(ctx, it.ID)
		if err != nil {
			uc.logger.Error("failed to load renumbered dish", zap.String("dish_id", it.ID), zap.Error(err))
			continue
		}
		if d == nil {
			continue
		}
		uc.syncToElastic(ctx, d)
	}
}

func (uc *dishUseCase) removeFromElastic(ctx context.Context, id string) {
	if uc.es == nil {
		return
	}
	if err := uc.es.Delete(ctx, indexName, id); err != nil {
		uc.logger.Error("failed to delete dish from ES", zap.String("dish_id", id), zap.Error(err))
	}
}

// SearchDishes asks Elasticsearch when a query is given and falls back to
// the database when it is not configured or fails.
func (uc *dishUseCase) SearchDishes(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.SearchDishes")
	defer span.End()

	if filters.Query != "" && uc.es != nil {
		dishes, total, err := uc.searchElastic(ctx, filters)
		if err == nil {
			return dishes, total, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.Search(ctx, filters)
}

func (uc *dishUseCase) searchElastic(ctx context.Context, f *dto.DishFilters) ([]model.Dish, int, error) {
	must := []map[string]interface{}{
		{
			"multi_match": map[string]interface{}{
				"query":     f.Query,
				"fields":    []string{"name^3", "description"},
				"fuzziness": "AUTO",
			},
		},
	}
	filter := []map[string]interface{}{}
	if f.CategoryID != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"category_id": f.CategoryID}})
	}
	if !f.IncludeHidden {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"is_hidden": false}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": filter,
			},
		},
	}
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		q["from"] = (page - 1) * f.PageSize
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, indexName, q)
	if err != nil {
		return nil, 0, err
	}

	dishes := make([]model.Dish, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var d model.Dish
		if err := json.Unmarshal(hit.Source, &d); err != nil {
			uc.logger.Warn("skipping undecodable dish hit", zap.String("id", hit.ID), zap.Error(err))
			continue
		}
		dishes = append(dishes, d)
	}
	return dishes, res.Hits.Total.Value, nil
}
