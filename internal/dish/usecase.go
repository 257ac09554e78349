package dish

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
)

type UseCase interface {
	CreateDish(ctx context.Context, input *dto.CreateDishInput) (*model.Dish, error)
	GetDish(ctx context.Context, id string) (*model.Dish, error)
	ListCategoryDishes(ctx context.Context, categoryID string) ([]model.Dish, error)
	SearchDishes(ctx context.Context, filters *dto.DishFilters) ([]model.Dish, int, error)
	UpdateDish(ctx context.Context, input *dto.UpdateDishInput) (*model.Dish, error)
	DeleteDish(ctx context.Context, id string) error

	SetDishNumber(ctx context.Context, id string, number int) error
	// ToggleHidden flips the hidden flag and returns the new value.
	ToggleHidden(ctx context.Context, id string) (bool, error)
	SetHidden(ctx context.Context, id string, hidden bool) error
}
