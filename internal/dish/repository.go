package dish

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
)

type Repository interface {
	Create(ctx context.Context, dish *model.Dish) error
	FindByID(ctx context.Context, id string) (*model.Dish, error)
	FindByCategory(ctx context.Context, categoryID string) ([]model.Dish, error)
	Search(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error)
	Update(ctx context.Context, dish *model.Dish) error
	Delete(ctx context.Context, id string) error

	// Ordering and visibility
	UpdateNumbers(ctx context.Context, items []ordering.Item) error
	SetHidden(ctx context.Context, id string, hidden bool) error
}
