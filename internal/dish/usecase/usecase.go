package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/dish"
	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/event"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/search"
	"github.com/fekuna/omnipos-menu-service/pkg/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	entityType = "dish"
	listTTL    = 5 * time.Minute
	lockTTL    = 10 * time.Second
)

var tracer = otel.Tracer("github.com/fekuna/omnipos-menu-service/internal/dish")

type dishUseCase struct {
	repo       dish.Repository
	categories category.Repository
	tx         *database.Transactor
	cache      *cache.RedisClient
	es         *search.Client
	images     storage.ImageStore
	events     *event.Dispatcher
	logger     logger.ZapLogger
}

// NewDishUseCase wires the dish use case. cache, es and images are optional.
func NewDishUseCase(
	repo dish.Repository,
	categories category.Repository,
	tx *database.Transactor,
	cache *cache.RedisClient,
	es *search.Client,
	images storage.ImageStore,
	events *event.Dispatcher,
	log logger.ZapLogger,
) dish.UseCase {
	return &dishUseCase{
		repo:       repo,
		categories: categories,
		tx:         tx,
		cache:      cache,
		es:         es,
		images:     images,
		events:     events,
		logger:     log,
	}
}

func (uc *dishUseCase) CreateDish(ctx context.Context, input *dto.CreateDishInput) (*model.Dish, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.CreateDish")
	defer span.End()

	now := time.Now().UTC()
	d := &model.Dish{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		CategoryID:  input.CategoryID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Quantity:    input.Quantity,
		ShowUSD:     input.ShowUSD,
		ImageURL:    normalizeRef(input.ImageURL),
	}

	var renumbered []ordering.Item
	err := uc.mutate(ctx, func(ctx context.Context) error {
		cat, err := uc.findCategory(ctx, d.CategoryID)
		if err != nil {
			return err
		}
		d.Category = cat

		number, changes, err := uc.appendTo(ctx, d.CategoryID)
		if err != nil {
			return err
		}
		d.Number = number
		renumbered = changes

		return uc.repo.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, model.EventDishCreated, d.ID, d)
	go uc.syncToElastic(context.WithoutCancel(ctx), d)
	go uc.reindexNumbers(context.WithoutCancel(ctx), renumbered)

	return d, nil
}

func (uc *dishUseCase) GetDish(ctx context.Context, id string) (*model.Dish, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.GetDish")
	defer span.End()

	d, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, fmt.Errorf("dish %s: %w", id, model.ErrNotFound)
	}
	return d, nil
}

func (uc *dishUseCase) ListCategoryDishes(ctx context.Context, categoryID string) ([]model.Dish, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.ListCategoryDishes")
	defer span.End()

	cacheKey := model.CategoryDishesCacheKey(categoryID)
	if uc.cache != nil {
		var cached []model.Dish
		if err := uc.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	if _, err := uc.findCategory(ctx, categoryID); err != nil {
		return nil, err
	}

	dishes, err := uc.repo.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, cacheKey, dishes, listTTL); err != nil {
			uc.logger.Warn("failed to cache category dishes", zap.String("category_id", categoryID), zap.Error(err))
		}
	}

	return dishes, nil
}

func (uc *dishUseCase) UpdateDish(ctx context.Context, input *dto.UpdateDishInput) (*model.Dish, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.UpdateDish")
	defer span.End()

	var (
		updated    *model.Dish
		oldImage   *string
		renumbered []ordering.Item
	)

	err := uc.mutate(ctx, func(ctx context.Context) error {
		d, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("dish %s: %w", input.ID, model.ErrNotFound)
		}

		if input.CategoryID != d.CategoryID {
			cat, err := uc.findCategory(ctx, input.CategoryID)
			if err != nil {
				return err
			}

			// leave the old list
			old, err := uc.repo.FindByCategory(ctx, d.CategoryID)
			if err != nil {
				return err
			}
			left := ordering.Renumber(ordering.Without(items(old), d.ID))
			if err := uc.repo.UpdateNumbers(ctx, left); err != nil {
				return err
			}

			number, compacted, err := uc.appendTo(ctx, input.CategoryID)
			if err != nil {
				return err
			}
			renumbered = append(left, compacted...)
			d.CategoryID = input.CategoryID
			d.Category = cat
			d.Number = number
		}

		d.Name = input.Name
		d.Description = input.Description
		d.Price = input.Price
		d.Quantity = input.Quantity
		d.ShowUSD = input.ShowUSD

		switch {
		case input.DeleteImage:
			oldImage = d.ImageURL
			d.ImageURL = nil
		case input.ImageURL != nil:
			newImage := normalizeRef(input.ImageURL)
			if !model.SameRef(d.ImageURL, newImage) {
				oldImage = d.ImageURL
				d.ImageURL = newImage
			}
		}
		d.UpdatedAt = time.Now().UTC()

		updated = d
		return uc.repo.Update(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	uc.releaseImage(ctx, oldImage)
	uc.afterCommit(ctx, model.EventDishUpdated, updated.ID, updated)
	go uc.syncToElastic(context.WithoutCancel(ctx), updated)
	go uc.reindexNumbers(context.WithoutCancel(ctx), renumbered)

	return updated, nil
}

func (uc *dishUseCase) DeleteDish(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "DishUseCase.DeleteDish")
	defer span.End()

	var (
		removed    *model.Dish
		renumbered []ordering.Item
	)

	err := uc.mutate(ctx, func(ctx context.Context) error {
		d, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("dish %s: %w", id, model.ErrNotFound)
		}

		if err := uc.repo.Delete(ctx, id); err != nil {
			return err
		}

		siblings, err := uc.repo.FindByCategory(ctx, d.CategoryID)
		if err != nil {
			return err
		}
		removed = d
		renumbered = ordering.Renumber(items(siblings))
		return uc.repo.UpdateNumbers(ctx, renumbered)
	})
	if err != nil {
		return err
	}

	uc.releaseImage(ctx, removed.ImageURL)
	uc.afterCommit(ctx, model.EventDishRemoved, removed.ID, removed)
	go uc.removeFromElastic(context.WithoutCancel(ctx), removed.ID)
	go uc.reindexNumbers(context.WithoutCancel(ctx), renumbered)

	return nil
}

func (uc *dishUseCase) SetDishNumber(ctx context.Context, id string, number int) error {
	ctx, span := tracer.Start(ctx, "DishUseCase.SetDishNumber")
	defer span.End()

	var renumbered []ordering.Item
	err := uc.mutate(ctx, func(ctx context.Context) error {
		d, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("dish %s: %w", id, model.ErrNotFound)
		}

		siblings, err := uc.repo.FindByCategory(ctx, d.CategoryID)
		if err != nil {
			return err
		}
		renumbered, err = ordering.MoveTo(items(siblings), id, number)
		if err != nil {
			return err
		}
		return uc.repo.UpdateNumbers(ctx, renumbered)
	})
	if err != nil {
		return err
	}

	uc.afterCommit(ctx, model.EventDishReordered, id, map[string]int{"number": number})
	go uc.reindexNumbers(context.WithoutCancel(ctx), renumbered)
	return nil
}

func (uc *dishUseCase) ToggleHidden(ctx context.Context, id string) (bool, error) {
	ctx, span := tracer.Start(ctx, "DishUseCase.ToggleHidden")
	defer span.End()

	var d *model.Dish
	err := uc.mutate(ctx, func(ctx context.Context) error {
		var err error
		d, err = uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("dish %s: %w", id, model.ErrNotFound)
		}

		d.IsHidden = !d.IsHidden
		return uc.repo.SetHidden(ctx, id, d.IsHidden)
	})
	if err != nil {
		return false, err
	}

	uc.visibilityChanged(ctx, d)
	return d.IsHidden, nil
}

// SetHidden is the idempotent form of ToggleHidden used by the stop-list
// listener. Setting the current value publishes nothing.
func (uc *dishUseCase) SetHidden(ctx context.Context, id string, hidden bool) error {
	ctx, span := tracer.Start(ctx, "DishUseCase.SetHidden")
	defer span.End()

	var (
		d       *model.Dish
		changed bool
	)
	err := uc.mutate(ctx, func(ctx context.Context) error {
		var err error
		d, err = uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if d == nil {
			return fmt.Errorf("dish %s: %w", id, model.ErrNotFound)
		}
		if d.IsHidden == hidden {
			return nil
		}

		d.IsHidden = hidden
		changed = true
		return uc.repo.SetHidden(ctx, id, hidden)
	})
	if err != nil {
		return err
	}

	if changed {
		uc.visibilityChanged(ctx, d)
	}
	return nil
}

func (uc *dishUseCase) visibilityChanged(ctx context.Context, d *model.Dish) {
	uc.afterCommit(ctx, model.EventDishVisibilityChanged, d.ID, map[string]bool{"is_hidden": d.IsHidden})
	go uc.syncToElastic(context.WithoutCancel(ctx), d)
}

// mutate runs fn in a transaction under the catalog lock.
func (uc *dishUseCase) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return uc.cache.WithLock(ctx, model.CatalogLockKey, lockTTL, func() error {
		return uc.tx.WithinTx(ctx, fn)
	})
}

func (uc *dishUseCase) findCategory(ctx context.Context, id string) (*model.Category, error) {
	cat, err := uc.categories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, model.ErrNotFound)
	}
	return cat, nil
}

// appendTo compacts the dish list of categoryID and returns the number of a
// new last dish together with the compaction it applied.
func (uc *dishUseCase) appendTo(ctx context.Context, categoryID string) (int, []ordering.Item, error) {
	siblings, err := uc.repo.FindByCategory(ctx, categoryID)
	if err != nil {
		return 0, nil, err
	}
	changes := ordering.Renumber(items(siblings))
	if err := uc.repo.UpdateNumbers(ctx, changes); err != nil {
		return 0, nil, err
	}
	return ordering.Next(len(siblings)), changes, nil
}

func (uc *dishUseCase) afterCommit(ctx context.Context, eventType, id string, payload interface{}) {
	if uc.cache != nil {
		if err := uc.cache.DeleteByPattern(ctx, model.CatalogCachePattern); err != nil {
			uc.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	if uc.events != nil {
		uc.events.Dispatch(ctx, eventType, entityType, id, payload)
	}
}

func (uc *dishUseCase) releaseImage(ctx context.Context, ref *string) {
	if uc.images == nil || ref == nil {
		return
	}
	if err := uc.images.Delete(ctx, *ref); err != nil {
		uc.logger.Warn("failed to release dish image", zap.String("image", *ref), zap.Error(err))
	}
}

func items(dishes []model.Dish) []ordering.Item {
	out := make([]ordering.Item, len(dishes))
	for i, d := range dishes {
		out[i] = ordering.Item{ID: d.ID, Number: d.Number}
	}
	return out
}

func normalizeRef(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	v := *ref
	return &v
}
