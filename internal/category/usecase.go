package category

import (
	"context"

	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	ListNestedNames(ctx context.Context) ([]model.Category, error)
	GetCatalogTree(ctx context.Context) ([]model.Category, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	SetCategoryNumber(ctx context.Context, id string, number int) error
}
