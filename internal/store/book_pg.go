package store

import (
	"context"
	"errors"
	"fmt"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/usecase"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/jackc/pgx/v5"
)

var pg = goqu.Dialect("postgres")

type BookPG struct {
	db DBTX
}

func NewBookPG(db DBTX) *BookPG {
	return &BookPG{db: db}
}

func (r *BookPG) Insert(ctx context.Context, b entity.Book) (entity.Book, error) {
	const query = `
		INSERT INTO books (author, name, status, reg_date)
		VALUES ($1, $2, $3, now())
		RETURNING book_id, reg_date`

	if err := r.db.QueryRow(ctx, query, b.Author, b.Name, string(b.Status)).Scan(&b.ID, &b.RegDate); err != nil {
		return entity.Book{}, fmt.Errorf("insert book: %w", err)
	}
	return b, nil
}

func (r *BookPG) GetByID(ctx context.Context, id int64) (entity.Book, error) {
	const query = `
		SELECT book_id, author, name, status, reg_date, mod_date
		FROM books
		WHERE book_id = $1`

	var b entity.Book
	err := r.db.QueryRow(ctx, query, id).Scan(&b.ID, &b.Author, &b.Name, &b.Status, &b.RegDate, &b.ModDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entity.Book{}, usecase.ErrBookNotFound
		}
		return entity.Book{}, fmt.Errorf("get book %d: %w", id, err)
	}
	return b, nil
}

func (r *BookPG) Update(ctx context.Context, b entity.Book) error {
	const query = `
		UPDATE books
		SET author = $2, name = $3, status = $4, mod_date = $5
		WHERE book_id = $1`

	tag, err := r.db.Exec(ctx, query, b.ID, b.Author, b.Name, string(b.Status), b.ModDate)
	if err != nil {
		return fmt.Errorf("update book %d: %w", b.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrBookNotFound
	}
	return nil
}

func (r *BookPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE book_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return usecase.ErrBookNotFound
	}
	return nil
}

// Search runs the dynamic filtered query plus a parallel count query sharing
// the same predicate set, so the total is never computed by materializing
// every matching row.
func (r *BookPG) Search(ctx context.Context, f usecase.ListFilter) ([]entity.Book, int64, error) {
	countSQL, countArgs, err := buildCountQuery(f)
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	searchSQL, searchArgs, err := buildSearchQuery(f)
	if err != nil {
		return nil, 0, fmt.Errorf("build search query: %w", err)
	}

	rows, err := r.db.Query(ctx, searchSQL, searchArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("search books: %w", err)
	}
	defer rows.Close()

	var books []entity.Book
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(&b.ID, &b.Author, &b.Name, &b.Status, &b.RegDate, &b.ModDate); err != nil {
			return nil, 0, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

// searchPredicates maps each present filter field to one expression; an
// absent field contributes no predicate at all.
func searchPredicates(f usecase.ListFilter) []goqu.Expression {
	exprs := make([]goqu.Expression, 0, 3)
	if f.Status != nil {
		exprs = append(exprs, goqu.I("books.status").Eq(string(*f.Status)))
	}
	if f.Author != nil {
		exprs = append(exprs, goqu.I("books.author").Like("%"+*f.Author+"%"))
	}
	if f.Name != nil {
		exprs = append(exprs, goqu.I("books.name").Like("%"+*f.Name+"%"))
	}
	return exprs
}

// searchDataset picks the plain books scan or the category join depending on
// whether the filter names categories.
func searchDataset(f usecase.ListFilter) *goqu.SelectDataset {
	if len(f.Categories) == 0 {
		return pg.From("books").Where(searchPredicates(f)...)
	}

	codes := make([]string, 0, len(f.Categories))
	for _, c := range f.Categories {
		codes = append(codes, string(c))
	}
	exprs := append([]goqu.Expression{goqu.I("categories.name").In(codes)}, searchPredicates(f)...)

	return pg.From("book_categories").
		Join(goqu.T("books"), goqu.On(goqu.I("book_categories.book_id").Eq(goqu.I("books.book_id")))).
		Join(goqu.T("categories"), goqu.On(goqu.I("book_categories.category_id").Eq(goqu.I("categories.category_id")))).
		Where(exprs...)
}

func buildSearchQuery(f usecase.ListFilter) (string, []any, error) {
	ds := searchDataset(f).
		Select(
			goqu.I("books.book_id"),
			goqu.I("books.author"),
			goqu.I("books.name"),
			goqu.I("books.status"),
			goqu.I("books.reg_date"),
			goqu.I("books.mod_date"),
		).
		Order(goqu.I("books.reg_date").Desc(), goqu.I("books.book_id").Desc()).
		Limit(uint(f.PageSize)).
		Offset(uint((f.PageNumber - 1) * f.PageSize))

	if len(f.Categories) > 0 {
		// A book matching several requested categories must appear once.
		ds = ds.Distinct()
	}
	return ds.Prepared(true).ToSQL()
}

func buildCountQuery(f usecase.ListFilter) (string, []any, error) {
	ds := searchDataset(f)
	if len(f.Categories) > 0 {
		ds = ds.Select(goqu.COUNT(goqu.DISTINCT("books.book_id")))
	} else {
		ds = ds.Select(goqu.COUNT(goqu.Star()))
	}
	return ds.Prepared(true).ToSQL()
}
