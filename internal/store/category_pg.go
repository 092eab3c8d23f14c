package store

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/usecase"

	"github.com/jackc/pgx/v5"
)

// CategoryPG resolves category codes against the pre-seeded reference table.
// Read-only: categories are created by migrations, never by the service.
type CategoryPG struct {
	db DBTX
}

func NewCategoryPG(db DBTX) *CategoryPG {
	return &CategoryPG{db: db}
}

func (r *CategoryPG) GetByCode(ctx context.Context, code entity.CategoryCode) (entity.Category, error) {
	const query = `
		SELECT category_id, name
		FROM categories
		WHERE name = $1`

	var c entity.Category
	err := r.db.QueryRow(ctx, query, string(code)).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Category{}, usecase.ErrCategoryNotFound
		}
		return entity.Category{}, fmt.Errorf("get category %q: %w", code, err)
	}
	return c, nil
}
