package category

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	// FindSiblings returns the sibling group of parentID ordered by number.
	FindSiblings(ctx context.Context, parentID *string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	UpdateNumbers(ctx context.Context, items []ordering.Item) error
	Delete(ctx context.Context, id string) error
	CountChildren(ctx context.Context, id string) (int, error)
	CountDishes(ctx context.Context, id string) (int, error)
}
