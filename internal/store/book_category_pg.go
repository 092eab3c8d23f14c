package store

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/usecase"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// BookCategoryPG owns the book/category link rows. Nothing else touches the
// book_categories table.
type BookCategoryPG struct {
	db DBTX
}

func NewBookCategoryPG(db DBTX) *BookCategoryPG {
	return &BookCategoryPG{db: db}
}

func (r *BookCategoryPG) Link(ctx context.Context, bookID, categoryID int64) (entity.BookCategory, error) {
	const query = `
		INSERT INTO book_categories (book_id, category_id)
		VALUES ($1, $2)
		RETURNING book_category_id`

	link := entity.BookCategory{BookID: bookID, CategoryID: categoryID}
	if err := r.db.QueryRow(ctx, query, bookID, categoryID).Scan(&link.ID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return entity.BookCategory{}, usecase.ErrDuplicateAssociation
		}
		return entity.BookCategory{}, fmt.Errorf("link book %d to category %d: %w", bookID, categoryID, err)
	}
	return link, nil
}

func (r *BookCategoryPG) CategoriesByBookID(ctx context.Context, bookID int64) ([]entity.Category, error) {
	// Ordered by link id: insertion order, so responses are deterministic.
	const query = `
		SELECT c.category_id, c.name
		FROM book_categories bc
		JOIN categories c ON c.category_id = bc.category_id
		WHERE bc.book_id = $1
		ORDER BY bc.book_category_id`

	rows, err := r.db.Query(ctx, query, bookID)
	if err != nil {
		return nil, fmt.Errorf("list categories for book %d: %w", bookID, err)
	}
	defer rows.Close()

	var categories []entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *BookCategoryPG) DeleteByBookID(ctx context.Context, bookID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM book_categories WHERE book_id = $1`, bookID)
	if err != nil {
		return 0, fmt.Errorf("unlink categories for book %d: %w", bookID, err)
	}
	return tag.RowsAffected(), nil
}
