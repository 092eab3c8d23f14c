package usecase

import (
	"context"

	"bookcatalog/internal/entity"
)

// BookRepository owns book rows and the filtered, paginated search.
type BookRepository interface {
	// Insert assigns the identity and registration date and returns the full row.
	Insert(ctx context.Context, b entity.Book) (entity.Book, error)
	// GetByID returns ErrBookNotFound when the id has no row.
	GetByID(ctx context.Context, id int64) (entity.Book, error)
	// Update persists author, name, status and mod date in place; the caller
	// sets the mod date beforehand.
	Update(ctx context.Context, b entity.Book) error
	Delete(ctx context.Context, id int64) error
	// Search returns one page of matching books plus the total match count
	// computed by a parallel count query over the same predicates.
	Search(ctx context.Context, f ListFilter) ([]entity.Book, int64, error)
}

// CategoryRepository resolves a category code to its persisted row.
type CategoryRepository interface {
	// GetByCode returns ErrCategoryNotFound when the code has no row.
	GetByCode(ctx context.Context, code entity.CategoryCode) (entity.Category, error)
}

// BookCategoryRepository is the sole owner of book/category link rows.
type BookCategoryRepository interface {
	// Link inserts one link row. A (book, category) unique-constraint hit
	// surfaces as ErrDuplicateAssociation.
	Link(ctx context.Context, bookID, categoryID int64) (entity.BookCategory, error)
	// CategoriesByBookID returns the book's categories in link insertion order.
	CategoriesByBookID(ctx context.Context, bookID int64) ([]entity.Category, error)
	// DeleteByBookID removes every link for the book and reports how many.
	DeleteByBookID(ctx context.Context, bookID int64) (int64, error)
}

// Repositories bundles the stores handed to one unit of work.
type Repositories struct {
	Books          BookRepository
	Categories     CategoryRepository
	BookCategories BookCategoryRepository
}

// TxRunner executes fn against repositories bound to a single transaction.
// Within it, earlier statements are visible to later ones, so an unlink
// always lands before the relink that follows it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(r Repositories) error) error
}
