package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

// SQLRepository works on every driver pkg/database supports. Queries are
// written with '?' placeholders and rebound for the driver.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) conn(ctx context.Context) database.Executor {
	return database.Conn(ctx, r.DB)
}

func (r *SQLRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, name, image_url, number, created_at, updated_at)
        VALUES (:id, :parent_id, :name, :image_url, :number, :created_at, :updated_at)
    `
	_, err := r.conn(ctx).NamedExecContext(ctx, query, c)
	return err
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if !model.IsID(id) {
		return nil, nil
	}

	var category model.Category
	query := r.DB.Rebind(`SELECT * FROM categories WHERE id = ? LIMIT 1`)
	err := r.conn(ctx).GetContext(ctx, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	categories := []model.Category{}
	var count int

	conditions := []string{}
	args := []interface{}{}

	// ParentID filtering logic
	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			if !model.IsID(*f.ParentID) {
				return categories, 0, nil
			}
			conditions = append(conditions, "parent_id = ?")
			args = append(args, *f.ParentID)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := r.DB.Rebind("SELECT count(*) FROM categories" + whereClause)
	if err := r.conn(ctx).GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY number ASC, name ASC"

	// Pagination
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := r.conn(ctx).SelectContext(ctx, &categories, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}

	return categories, count, nil
}

func (r *SQLRepository) FindSiblings(ctx context.Context, parentID *string) ([]model.Category, error) {
	categories := []model.Category{}

	if parentID != nil && !model.IsID(*parentID) {
		return categories, nil
	}

	var err error
	if parentID == nil {
		err = r.conn(ctx).SelectContext(ctx, &categories,
			`SELECT * FROM categories WHERE parent_id IS NULL ORDER BY number ASC, created_at ASC`)
	} else {
		err = r.conn(ctx).SelectContext(ctx, &categories,
			r.DB.Rebind(`SELECT * FROM categories WHERE parent_id = ? ORDER BY number ASC, created_at ASC`), *parentID)
	}
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            image_url = :image_url,
            number = :number,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.conn(ctx).NamedExecContext(ctx, query, c)
	return err
}

func (r *SQLRepository) UpdateNumbers(ctx context.Context, items []ordering.Item) error {
	query := r.DB.Rebind(`UPDATE categories SET number = ? WHERE id = ?`)
	for _, it := range items {
		if _, err := r.conn(ctx).ExecContext(ctx, query, it.Number, it.ID); err != nil {
			return fmt.Errorf("renumber category %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.conn(ctx).ExecContext(ctx, r.DB.Rebind("DELETE FROM categories WHERE id = ?"), id)
	return err
}

func (r *SQLRepository) CountChildren(ctx context.Context, id string) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count, r.DB.Rebind(`SELECT count(*) FROM categories WHERE parent_id = ?`), id)
	return count, err
}

func (r *SQLRepository) CountDishes(ctx context.Context, id string) (int, error) {
	var count int
	err := r.conn(ctx).GetContext(ctx, &count, r.DB.Rebind(`SELECT count(*) FROM dishes WHERE category_id = ?`), id)
	return count, err
}
