package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/internal/ordering"
	"github.com/fekuna/omnipos-menu-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) conn(ctx context.Context) database.Executor {
	return database.Conn(ctx, r.DB)
}

func (r *SQLRepository) Create(ctx context.Context, d *model.Dish) error {
	query := `
        INSERT INTO dishes (
            id, category_id, name, description, price, quantity,
            show_usd, is_hidden, image_url, number, created_at, updated_at
        )
        VALUES (
            :id, :category_id, :name, :description, :price, :quantity,
            :show_usd, :is_hidden, :image_url, :number, :created_at, :updated_at
        )
    `
	_, err := r.conn(ctx).NamedExecContext(ctx, query, d)
	return err
}

// FindByID returns the dish with its category attached.
func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Dish, error) {
	if !model.IsID(id) {
		return nil, nil
	}

	var dish model.Dish
	err := r.conn(ctx).GetContext(ctx, &dish, r.DB.Rebind(`SELECT * FROM dishes WHERE id = ? LIMIT 1`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var cat model.Category
	err = r.conn(ctx).GetContext(ctx, &cat, r.DB.Rebind(`SELECT * FROM categories WHERE id = ? LIMIT 1`), dish.CategoryID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		dish.Category = &cat
	}

	return &dish, nil
}

func (r *SQLRepository) FindByCategory(ctx context.Context, categoryID string) ([]model.Dish, error) {
	dishes := []model.Dish{}
	if !model.IsID(categoryID) {
		return dishes, nil
	}

	query := r.DB.Rebind(`SELECT * FROM dishes WHERE category_id = ? ORDER BY number ASC, created_at ASC`)
	if err := r.conn(ctx).SelectContext(ctx, &dishes, query, categoryID); err != nil {
		return nil, err
	}
	return dishes, nil
}

func (r *SQLRepository) Search(ctx context.Context, f *dto.DishFilters) ([]model.Dish, int, error) {
	dishes := []model.Dish{}
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.Query != "" {
		// LOWER/LIKE works on every supported dialect
		conditions = append(conditions, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		pattern := "%" + strings.ToLower(f.Query) + "%"
		args = append(args, pattern, pattern)
	}
	if f.CategoryID != "" {
		if !model.IsID(f.CategoryID) {
			return dishes, 0, nil
		}
		conditions = append(conditions, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.IncludeHidden {
		conditions = append(conditions, "is_hidden = ?")
		args = append(args, false)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := r.DB.Rebind("SELECT count(*) FROM dishes" + whereClause)
	if err := r.conn(ctx).GetContext(ctx, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM dishes" + whereClause + " ORDER BY name ASC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := r.conn(ctx).SelectContext(ctx, &dishes, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}

	return dishes, count, nil
}

func (r *SQLRepository) Update(ctx context.Context, d *model.Dish) error {
	query := `
        UPDATE dishes
        SET category_id = :category_id,
            name = :name,
            description = :description,
            price = :price,
            quantity = :quantity,
            show_usd = :show_usd,
            is_hidden = :is_hidden,
            image_url = :image_url,
            number = :number,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := r.conn(ctx).NamedExecContext(ctx, query, d)
	return err
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	_, err := r.conn(ctx).ExecContext(ctx, r.DB.Rebind("DELETE FROM dishes WHERE id = ?"), id)
	return err
}

func (r *SQLRepository) UpdateNumbers(ctx context.Context, items []ordering.Item) error {
	query := r.DB.Rebind(`UPDATE dishes SET number = ? WHERE id = ?`)
	for _, it := range items {
		if _, err := r.conn(ctx).ExecContext(ctx, query, it.Number, it.ID); err != nil {
			return fmt.Errorf("renumber dish %s: %w", it.ID, err)
		}
	}
	return nil
}

func (r *SQLRepository) SetHidden(ctx context.Context, id string, hidden bool) error {
	_, err := r.conn(ctx).ExecContext(ctx, r.DB.Rebind(`UPDATE dishes SET is_hidden = ? WHERE id = ?`), hidden, id)
	return err
}
