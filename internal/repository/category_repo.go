package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Desarrolo-de-Software-V/all-offers/internal/models"
)

type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

// List returns all categories ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, icon, color FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Get returns (nil, nil) when the category does not exist.
func (r *CategoryRepo) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, icon, color FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.Icon, &c.Color)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// Create inserts a category (admin only).
func (r *CategoryRepo) Create(ctx context.Context, c *models.Category) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO categories (name, description, icon, color) VALUES ($1, $2, $3, $4) RETURNING id`,
		c.Name, c.Description, c.Icon, c.Color,
	).Scan(&c.ID)
}
