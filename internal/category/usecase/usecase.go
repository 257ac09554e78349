package usecase

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/event"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
	"github.com/fekuna/omnipos-menu-service/pkg/cache"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	entityType = "category"
	treeTTL    = 5 * time.Minute
	lockTTL    = 10 * time.Second
)

var tracer = otel.Tracer("github.com/fekuna/omnipos-menu-service/internal/category")

type categoryUseCase struct {
	repo   category.Repository
	tx     *database.Transactor
	cache  *cache.RedisClient
	images storage.ImageStore
	events *event.Dispatcher
	logger logger.ZapLogger
}

// NewCategoryUseCase wires the category use case. cache and images may be
// nil; the catalog then runs uncached and image references are kept as is.
func NewCategoryUseCase(
	repo category.Repository,
	tx *database.Transactor,
	cache *cache.RedisClient,
	images storage.ImageStore,
	events *event.Dispatcher,
	log logger.ZapLogger,
) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		tx:     tx,
		cache:  cache,
		images: images,
		events: events,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.CreateCategory")
	defer span.End()

	now := time.Now().UTC()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID: normalizeRef(input.ParentID),
		Name:     input.Name,
		ImageURL: normalizeRef(input.ImageURL),
	}

	err := uc.mutate(ctx, func(ctx context.Context) error {
		if cat.ParentID != nil {
			parent, err := uc.repo.FindByID(ctx, *cat.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return fmt.Errorf("parent category %s: %w", *cat.ParentID, model.ErrNotFound)
			}
		}

		number, err := uc.appendTo(ctx, cat.ParentID)
		if err != nil {
			return err
		}
		cat.Number = number

		return uc.repo.Create(ctx, cat)
	})
	if err != nil {
		return nil, err
	}

	uc.afterCommit(ctx, model.EventCategoryCreated, cat.ID, cat)
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.GetCategory")
	defer span.End()

	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", id, model.ErrNotFound)
	}

	children, err := uc.repo.FindSiblings(ctx, &cat.ID)
	if err != nil {
		return nil, err
	}
	cat.Children = children

	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.ListCategories")
	defer span.End()

	return uc.repo.FindAll(ctx, filters)
}

// ListNestedNames returns every category labelled with its full path, the
// list admin forms offer when choosing a parent or a dish category.
func (uc *categoryUseCase) ListNestedNames(ctx context.Context) ([]model.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.ListNestedNames")
	defer span.End()

	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*model.Category, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	for i := range all {
		all[i].NestedName = nestedName(&all[i], byID)
	}

	slices.SortStableFunc(all, func(a, b model.Category) int {
		return strings.Compare(a.NestedName, b.NestedName)
	})
	return all, nil
}

func (uc *categoryUseCase) GetCatalogTree(ctx context.Context) ([]model.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.GetCatalogTree")
	defer span.End()

	if uc.cache != nil {
		var cached []model.Category
		if err := uc.cache.GetJSON(ctx, model.CatalogTreeCacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return nil, err
	}
	tree := buildTree(all)

	if uc.cache != nil {
		if err := uc.cache.SetJSON(ctx, model.CatalogTreeCacheKey, tree, treeTTL); err != nil {
			uc.logger.Warn("failed to cache catalog tree", zap.Error(err))
		}
	}

	return tree, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.UpdateCategory")
	defer span.End()

	var (
		updated  *model.Category
		oldImage *string
	)

	err := uc.mutate(ctx, func(ctx context.Context) error {
		cat, err := uc.repo.FindByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("category %s: %w", input.ID, model.ErrNotFound)
		}

		newParent := normalizeRef(input.ParentID)
		if !model.SameRef(cat.ParentID, newParent) {
			if newParent != nil {
				if err := uc.checkCycle(ctx, cat.ID, *newParent); err != nil {
					return err
				}
			}

			// leave the old sibling group
			old, err := uc.repo.FindSiblings(ctx, cat.ParentID)
			if err != nil {
				return err
			}
			if err := uc.repo.UpdateNumbers(ctx, ordering.Renumber(ordering.Without(items(old), cat.ID))); err != nil {
				return err
			}

			number, err := uc.appendTo(ctx, newParent)
			if err != nil {
				return err
			}
			cat.ParentID = newParent
			cat.Number = number
		}

		cat.Name = input.Name
		if input.ImageURL != nil {
			newImage := normalizeRef(input.ImageURL)
			if !model.SameRef(cat.ImageURL, newImage) {
				oldImage = cat.ImageURL
				cat.ImageURL = newImage
			}
		}
		cat.UpdatedAt = time.Now().UTC()

		updated = cat
		return uc.repo.Update(ctx, cat)
	})
	if err != nil {
		return nil, err
	}

	uc.releaseImage(ctx, oldImage)
	uc.afterCommit(ctx, model.EventCategoryUpdated, updated.ID, updated)
	return updated, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.DeleteCategory")
	defer span.End()

	var removed *model.Category

	err := uc.mutate(ctx, func(ctx context.Context) error {
		cat, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("category %s: %w", id, model.ErrNotFound)
		}

		children, err := uc.repo.CountChildren(ctx, id)
		if err != nil {
			return err
		}
		dishes, err := uc.repo.CountDishes(ctx, id)
		if err != nil {
			return err
		}
		if children > 0 || dishes > 0 {
			return fmt.Errorf("category %s has %d subcategories and %d dishes: %w", id, children, dishes, model.ErrCategoryNotEmpty)
		}

		if err := uc.repo.Delete(ctx, id); err != nil {
			return err
		}

		siblings, err := uc.repo.FindSiblings(ctx, cat.ParentID)
		if err != nil {
			return err
		}
		removed = cat
		return uc.repo.UpdateNumbers(ctx, ordering.Renumber(items(siblings)))
	})
	if err != nil {
		return err
	}

	uc.releaseImage(ctx, removed.ImageURL)
	uc.afterCommit(ctx, model.EventCategoryRemoved, removed.ID, removed)
	return nil
}

func (uc *categoryUseCase) SetCategoryNumber(ctx context.Context, id string, number int) error {
	ctx, span := tracer.Start(ctx, "CategoryUseCase.SetCategoryNumber")
	defer span.End()

	err := uc.mutate(ctx, func(ctx context.Context) error {
		cat, err := uc.repo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if cat == nil {
			return fmt.Errorf("category %s: %w", id, model.ErrNotFound)
		}

		siblings, err := uc.repo.FindSiblings(ctx, cat.ParentID)
		if err != nil {
			return err
		}
		changes, err := ordering.MoveTo(items(siblings), id, number)
		if err != nil {
			return err
		}
		return uc.repo.UpdateNumbers(ctx, changes)
	})
	if err != nil {
		return err
	}

	uc.afterCommit(ctx, model.EventCategoryReordered, id, map[string]int{"number": number})
	return nil
}

// mutate runs fn in a transaction under the catalog lock.
func (uc *categoryUseCase) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	return uc.cache.WithLock(ctx, model.CatalogLockKey, lockTTL, func() error {
		return uc.tx.WithinTx(ctx, fn)
	})
}

// appendTo compacts the sibling group of parentID and returns the number of
// a new last element.
func (uc *categoryUseCase) appendTo(ctx context.Context, parentID *string) (int, error) {
	siblings, err := uc.repo.FindSiblings(ctx, parentID)
	if err != nil {
		return 0, err
	}
	if err := uc.repo.UpdateNumbers(ctx, ordering.Renumber(items(siblings))); err != nil {
		return 0, err
	}
	return ordering.Next(len(siblings)), nil
}

// checkCycle walks up from newParentID and fails if id is on the way.
func (uc *categoryUseCase) checkCycle(ctx context.Context, id, newParentID string) error {
	seen := map[string]bool{}
	cur := newParentID
	for {
		if cur == id {
			return fmt.Errorf("move %s under %s: %w", id, newParentID, model.ErrCycleRejected)
		}
		if seen[cur] {
			// the stored chain already loops; nothing under it can reach id
			return nil
		}
		seen[cur] = true

		node, err := uc.repo.FindByID(ctx, cur)
		if err != nil {
			return err
		}
		if node == nil {
			if cur == newParentID {
				return fmt.Errorf("parent category %s: %w", newParentID, model.ErrNotFound)
			}
			return nil
		}
		if node.ParentID == nil {
			return nil
		}
		cur = *node.ParentID
	}
}

func (uc *categoryUseCase) afterCommit(ctx context.Context, eventType, id string, payload interface{}) {
	if uc.cache != nil {
		if err := uc.cache.DeleteByPattern(ctx, model.CatalogCachePattern); err != nil {
			uc.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
		}
	}
	if uc.events != nil {
		uc.events.Dispatch(ctx, eventType, entityType, id, payload)
	}
}

func (uc *categoryUseCase) releaseImage(ctx context.Context, ref *string) {
	if uc.images == nil || ref == nil {
		return
	}
	if err := uc.images.Delete(ctx, *ref); err != nil {
		uc.logger.Warn("failed to release category image", zap.String("image", *ref), zap.Error(err))
	}
}

func items(cats []model.Category) []ordering.Item {
	out := make([]ordering.Item, len(cats))
	for i, c := range cats {
		out[i] = ordering.Item{ID: c.ID, Number: c.Number}
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

func nestedName(c *model.Category, byID map[string]*model.Category) string {
	names := []string{c.Name}
	seen := map[string]bool{c.ID: true}
	for cur := c; cur.ParentID != nil; {
		parent, ok := byID[*cur.ParentID]
		if !ok || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		names = append(names, parent.Name)
		cur = parent
	}
	slices.Reverse(names)
	return strings.Join(names, " / ")
}

func buildTree(all []model.Category) []model.Category {
	byParent := map[string][]model.Category{}
	roots := []model.Category{}
	for _, c := range all {
		if c.ParentID == nil {
			roots = append(roots, c)
		} else {
			byParent[*c.ParentID] = append(byParent[*c.ParentID], c)
		}
	}

	var attach func(nodes []model.Category, depth int) []model.Category
	attach = func(nodes []model.Category, depth int) []model.Category {
		if depth > len(all) {
			return nodes
		}
		for i := range nodes {
			nodes[i].Children = attach(byParent[nodes[i].ID], depth+1)
		}
		return nodes
	}
	return attach(roots, 0)
}
