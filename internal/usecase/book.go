package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookcatalog/internal/entity"
)

const dateLayout = "2006-01-02 15:04:05"

// listPath is the base path reproduced in prev/next page links.
const listPath = "/v1/books"

// SaveBookParams carries a validated create command.
type SaveBookParams struct {
	Author     string
	Name       string
	Status     entity.Status
	Categories []entity.CategoryCode
}

// ModifyBookParams carries a validated full-overwrite command.
type ModifyBookParams struct {
	BookID     int64
	Author     string
	Name       string
	Status     entity.Status
	Categories []entity.CategoryCode
}

// ListFilter is the optional search constraint set. Nil pointer fields and a
// nil category slice mean "absent": they contribute no predicate and are
// omitted from page links.
type ListFilter struct {
	Categories []entity.CategoryCode
	Status     *entity.Status
	Author     *string
	Name       *string
	PageNumber int
	PageSize   int
}

// BookView is a book as rendered to clients. Categories keep link insertion
// order; ModDate is empty until the first modify.
type BookView struct {
	ID         int64                 `json:"id"`
	Categories []entity.CategoryCode `json:"categories"`
	Author     string                `json:"author"`
	Name       string                `json:"name"`
	Status     entity.Status         `json:"status"`
	RegDate    string                `json:"reg_date"`
	ModDate    string                `json:"mod_date"`
}

// BookPage is one window of list results with navigation links.
type BookPage struct {
	Books      []BookView `json:"books"`
	PageNumber int        `json:"page_number"`
	TotalPage  int        `json:"total_page"`
	TotalCount int64      `json:"total_count"`
	PrevPage   string     `json:"prev_page"`
	NextPage   string     `json:"next_page"`
}

// BookUsecase orchestrates book rows, category resolution and link rows.
// It holds no state of its own; every operation runs inside one transaction.
type BookUsecase struct {
	tx TxRunner
}

func NewBookUsecase(tx TxRunner) *BookUsecase {
	return &BookUsecase{tx: tx}
}

// Save inserts the book and links it to each category in input order. The
// response reuses the input code list instead of re-reading the links.
func (uc *BookUsecase) Save(ctx context.Context, p SaveBookParams) (BookView, error) {
	if hasDuplicateCode(p.Categories) {
		return BookView{}, ErrDuplicateCategory
	}

	var view BookView
	err := uc.tx.RunInTx(ctx, func(r Repositories) error {
		book, err := r.Books.Insert(ctx, entity.Book{
			Author: p.Author,
			Name:   p.Name,
			Status: p.Status,
		})
		if err != nil {
			return err
		}
		if err := linkCategories(ctx, r, book.ID, p.Categories); err != nil {
			return err
		}
		view = toBookView(book, p.Categories)
		return nil
	})
	if err != nil {
		return BookView{}, err
	}
	return view, nil
}

// FindByID returns the book with its categories in link insertion order.
func (uc *BookUsecase) FindByID(ctx context.Context, id int64) (BookView, error) {
	var view BookView
	err := uc.tx.RunInTx(ctx, func(r Repositories) error {
		book, err := r.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		codes, err := categoryCodes(ctx, r, id)
		if err != nil {
			return err
		}
		view = toBookView(book, codes)
		return nil
	})
	if err != nil {
		return BookView{}, err
	}
	return view, nil
}

// List searches one page of books. Each returned book gets its own category
// lookup; the page size bound keeps that per-row fan-out acceptable.
func (uc *BookUsecase) List(ctx context.Context, f ListFilter) (BookPage, error) {
	if f.Author != nil && strings.TrimSpace(*f.Author) == "" {
		return BookPage{}, ErrInvalidAuthor
	}
	if f.Name != nil && strings.TrimSpace(*f.Name) == "" {
		return BookPage{}, ErrInvalidName
	}
	if f.PageNumber < 1 {
		return BookPage{}, ErrInvalidPageNumber
	}
	if f.PageSize < 1 {
		return BookPage{}, ErrInvalidPageSize
	}

	var page BookPage
	err := uc.tx.RunInTx(ctx, func(r Repositories) error {
		books, total, err := r.Books.Search(ctx, f)
		if err != nil {
			return err
		}

		views := make([]BookView, 0, len(books))
		for _, book := range books {
			codes, err := categoryCodes(ctx, r, book.ID)
			if err != nil {
				return err
			}
			views = append(views, toBookView(book, codes))
		}

		totalPage := int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
		if totalPage == 0 {
			totalPage = 1
		}

		page = BookPage{
			Books:      views,
			PageNumber: f.PageNumber,
			TotalPage:  totalPage,
			TotalCount: total,
			PrevPage:   pageURL(f, -1, totalPage),
			NextPage:   pageURL(f, +1, totalPage),
		}
		return nil
	})
	if err != nil {
		return BookPage{}, err
	}
	return page, nil
}

// Modify overwrites the book fields, stamps the mod date and replaces the
// category links wholesale.
func (uc *BookUsecase) Modify(ctx context.Context, p ModifyBookParams) (BookView, error) {
	if hasDuplicateCode(p.Categories) {
		return BookView{}, ErrDuplicateCategory
	}

	var view BookView
	err := uc.tx.RunInTx(ctx, func(r Repositories) error {
		book, err := r.Books.GetByID(ctx, p.BookID)
		if err != nil {
			return err
		}

		now := time.Now()
		book.Author = p.Author
		book.Name = p.Name
		book.Status = p.Status
		book.ModDate = &now
		if err := r.Books.Update(ctx, book); err != nil {
			return err
		}

		// Old links must be gone before relinking, or the (book, category)
		// unique constraint trips for every retained category.
		if _, err := r.BookCategories.DeleteByBookID(ctx, book.ID); err != nil {
			return err
		}
		if err := linkCategories(ctx, r, book.ID, p.Categories); err != nil {
			return err
		}

		view = toBookView(book, p.Categories)
		return nil
	})
	if err != nil {
		return BookView{}, err
	}
	return view, nil
}

// Delete removes the book's links and then the book itself. Links go first
// unconditionally, so repeating a half-finished delete is a no-op on links
// and a plain not-found on the book.
func (uc *BookUsecase) Delete(ctx context.Context, id int64) error {
	return uc.tx.RunInTx(ctx, func(r Repositories) error {
		if _, err := r.BookCategories.DeleteByBookID(ctx, id); err != nil {
			return err
		}
		book, err := r.Books.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return r.Books.Delete(ctx, book.ID)
	})
}

func linkCategories(ctx context.Context, r Repositories, bookID int64, codes []entity.CategoryCode) error {
	for _, code := range codes {
		category, err := r.Categories.GetByCode(ctx, code)
		if err != nil {
			return err
		}
		if _, err := r.BookCategories.Link(ctx, bookID, category.ID); err != nil {
			return err
		}
	}
	return nil
}

func categoryCodes(ctx context.Context, r Repositories, bookID int64) ([]entity.CategoryCode, error) {
	categories, err := r.BookCategories.CategoriesByBookID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	codes := make([]entity.CategoryCode, 0, len(categories))
	for _, c := range categories {
		codes = append(codes, entity.CategoryCode(c.Name))
	}
	return codes, nil
}

func toBookView(b entity.Book, codes []entity.CategoryCode) BookView {
	modDate := ""
	if b.ModDate != nil {
		modDate = b.ModDate.Format(dateLayout)
	}
	return BookView{
		ID:         b.ID,
		Categories: codes,
		Author:     b.Author,
		Name:       b.Name,
		Status:     b.Status,
		RegDate:    b.RegDate.Format(dateLayout),
		ModDate:    modDate,
	}
}

func hasDuplicateCode(codes []entity.CategoryCode) bool {
	seen := make(map[entity.CategoryCode]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			return true
		}
		seen[code] = struct{}{}
	}
	return false
}

// pageURL rebuilds the list URL one page away from the current window,
// keeping every present filter field. It returns "" when there is no page in
// the requested direction.
func pageURL(f ListFilter, step int, totalPage int) string {
	if (step < 0 && f.PageNumber == 1) || (step > 0 && f.PageNumber == totalPage) {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(listPath)
	sb.WriteString("?")

	if f.Categories != nil {
		codes := make([]string, 0, len(f.Categories))
		for _, c := range f.Categories {
			codes = append(codes, string(c))
		}
		sb.WriteString("categories=")
		sb.WriteString(strings.Join(codes, ","))
		sb.WriteString("&")
	}
	if f.Status != nil {
		sb.WriteString("status=")
		sb.WriteString(string(*f.Status))
		sb.WriteString("&")
	}
	if f.Author != nil {
		sb.WriteString("author=")
		sb.WriteString(*f.Author)
		sb.WriteString("&")
	}
	if f.Name != nil {
		sb.WriteString("name=")
		sb.WriteString(*f.Name)
		sb.WriteString("&")
	}
	fmt.Fprintf(&sb, "pageNumber=%d&pageSize=%d", f.PageNumber+step, f.PageSize)

	return sb.String()
}
