package usecase_test

import (
	"context"
	"testing"
	"time"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/store/mocks"
	"bookcatalog/internal/usecase"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubTxRunner hands the mocked repositories straight to fn; transaction
// behavior itself is the store's concern.
type stubTxRunner struct {
	repos usecase.Repositories
}

func (s stubTxRunner) RunInTx(ctx context.Context, fn func(usecase.Repositories) error) error {
	return fn(s.repos)
}

type fixture struct {
	books      *mocks.MockBookRepository
	categories *mocks.MockCategoryRepository
	links      *mocks.MockBookCategoryRepository
	uc         *usecase.BookUsecase
}

func newFixture(t *testing.T) fixture {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	f := fixture{
		books:      mocks.NewMockBookRepository(ctrl),
		categories: mocks.NewMockCategoryRepository(ctrl),
		links:      mocks.NewMockBookCategoryRepository(ctrl),
	}
	f.uc = usecase.NewBookUsecase(stubTxRunner{repos: usecase.Repositories{
		Books:          f.books,
		Categories:     f.categories,
		BookCategories: f.links,
	}})
	return f
}

var regDate = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func TestBookUsecase_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("success - links categories in input order", func(t *testing.T) {
		f := newFixture(t)

		inserted := entity.Book{ID: 7, Author: "A", Name: "B", Status: entity.StatusGood, RegDate: regDate}
		f.books.EXPECT().
			Insert(ctx, entity.Book{Author: "A", Name: "B", Status: entity.StatusGood}).
			Return(inserted, nil)

		gomock.InOrder(
			f.categories.EXPECT().GetByCode(ctx, entity.CategoryCook).Return(entity.Category{ID: 6, Name: "cook"}, nil),
			f.links.EXPECT().Link(ctx, int64(7), int64(6)).Return(entity.BookCategory{ID: 1, BookID: 7, CategoryID: 6}, nil),
			f.categories.EXPECT().GetByCode(ctx, entity.CategoryCookGeneral).Return(entity.Category{ID: 7, Name: "cook_general"}, nil),
			f.links.EXPECT().Link(ctx, int64(7), int64(7)).Return(entity.BookCategory{ID: 2, BookID: 7, CategoryID: 7}, nil),
		)

		view, err := f.uc.Save(ctx, usecase.SaveBookParams{
			Author:     "A",
			Name:       "B",
			Status:     entity.StatusGood,
			Categories: []entity.CategoryCode{entity.CategoryCook, entity.CategoryCookGeneral},
		})

		require.NoError(t, err)
		assert.Equal(t, int64(7), view.ID)
		assert.Equal(t, []entity.CategoryCode{entity.CategoryCook, entity.CategoryCookGeneral}, view.Categories)
		assert.Equal(t, "2024-05-01 09:30:00", view.RegDate)
		assert.Equal(t, "", view.ModDate)
	})

	t.Run("error - duplicate category codes rejected before any write", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Save(ctx, usecase.SaveBookParams{
			Author:     "A",
			Name:       "B",
			Status:     entity.StatusGood,
			Categories: []entity.CategoryCode{entity.CategoryCook, entity.CategoryCook},
		})

		assert.ErrorIs(t, err, usecase.ErrDuplicateCategory)
	})

	t.Run("error - unknown category", func(t *testing.T) {
		f := newFixture(t)

		f.books.EXPECT().
			Insert(ctx, gomock.Any()).
			Return(entity.Book{ID: 7, RegDate: regDate}, nil)
		f.categories.EXPECT().
			GetByCode(ctx, entity.CategoryCode("cook")).
			Return(entity.Category{}, usecase.ErrCategoryNotFound)

		_, err := f.uc.Save(ctx, usecase.SaveBookParams{
			Author:     "A",
			Name:       "B",
			Status:     entity.StatusGood,
			Categories: []entity.CategoryCode{entity.CategoryCook},
		})

		assert.ErrorIs(t, err, usecase.ErrCategoryNotFound)
	})
}

func TestBookUsecase_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success - categories come back in link order", func(t *testing.T) {
		f := newFixture(t)

		f.books.EXPECT().
			GetByID(ctx, int64(7)).
			Return(entity.Book{ID: 7, Author: "A", Name: "B", Status: entity.StatusGood, RegDate: regDate}, nil)
		f.links.EXPECT().
			CategoriesByBookID(ctx, int64(7)).
			Return([]entity.Category{{ID: 6, Name: "cook"}, {ID: 7, Name: "cook_general"}}, nil)

		view, err := f.uc.FindByID(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, []entity.CategoryCode{entity.CategoryCook, entity.CategoryCookGeneral}, view.Categories)
	})

	t.Run("error - not found", func(t *testing.T) {
		f := newFixture(t)

		f.books.EXPECT().GetByID(ctx, int64(99)).Return(entity.Book{}, usecase.ErrBookNotFound)

		_, err := f.uc.FindByID(ctx, 99)

		assert.ErrorIs(t, err, usecase.ErrBookNotFound)
	})
}

func TestBookUsecase_List(t *testing.T) {
	ctx := context.Background()

	t.Run("error - validation", func(t *testing.T) {
		f := newFixture(t)
		blank := "   "

		_, err := f.uc.List(ctx, usecase.ListFilter{Author: &blank, PageNumber: 1, PageSize: 10})
		assert.ErrorIs(t, err, usecase.ErrInvalidAuthor)

		_, err = f.uc.List(ctx, usecase.ListFilter{Name: &blank, PageNumber: 1, PageSize: 10})
		assert.ErrorIs(t, err, usecase.ErrInvalidName)

		_, err = f.uc.List(ctx, usecase.ListFilter{PageNumber: 0, PageSize: 10})
		assert.ErrorIs(t, err, usecase.ErrInvalidPageNumber)

		_, err = f.uc.List(ctx, usecase.ListFilter{PageNumber: 1, PageSize: 0})
		assert.ErrorIs(t, err, usecase.ErrInvalidPageSize)
	})

	t.Run("success - empty store still renders one page", func(t *testing.T) {
		f := newFixture(t)
		filter := usecase.ListFilter{PageNumber: 1, PageSize: 10}

		f.books.EXPECT().Search(ctx, filter).Return(nil, int64(0), nil)

		page, err := f.uc.List(ctx, filter)

		require.NoError(t, err)
		assert.Empty(t, page.Books)
		assert.Equal(t, 1, page.PageNumber)
		assert.Equal(t, 1, page.TotalPage)
		assert.Equal(t, int64(0), page.TotalCount)
		assert.Equal(t, "", page.PrevPage)
		assert.Equal(t, "", page.NextPage)
	})

	t.Run("success - middle page with category fan-out", func(t *testing.T) {
		f := newFixture(t)
		filter := usecase.ListFilter{PageNumber: 2, PageSize: 5}

		books := []entity.Book{
			{ID: 11, Author: "A", Name: "N1", Status: entity.StatusGood, RegDate: regDate},
			{ID: 10, Author: "B", Name: "N2", Status: entity.StatusLost, RegDate: regDate.Add(-time.Hour)},
		}
		f.books.EXPECT().Search(ctx, filter).Return(books, int64(12), nil)
		f.links.EXPECT().CategoriesByBookID(ctx, int64(11)).Return([]entity.Category{{ID: 4, Name: "it"}}, nil)
		f.links.EXPECT().CategoriesByBookID(ctx, int64(10)).Return([]entity.Category{{ID: 5, Name: "science"}}, nil)

		page, err := f.uc.List(ctx, filter)

		require.NoError(t, err)
		require.Len(t, page.Books, 2)
		assert.Equal(t, []entity.CategoryCode{entity.CategoryIT}, page.Books[0].Categories)
		assert.Equal(t, 3, page.TotalPage)
		assert.Equal(t, int64(12), page.TotalCount)
		assert.Equal(t, "/v1/books?pageNumber=1&pageSize=5", page.PrevPage)
		assert.Equal(t, "/v1/books?pageNumber=3&pageSize=5", page.NextPage)
	})
}

func TestBookUsecase_Modify(t *testing.T) {
	ctx := context.Background()

	t.Run("success - replaces links wholesale, unlink before relink", func(t *testing.T) {
		f := newFixture(t)

		existing := entity.Book{ID: 7, Author: "Old", Name: "Old", Status: entity.StatusGood, RegDate: regDate}
		f.books.EXPECT().GetByID(ctx, int64(7)).Return(existing, nil)
		f.books.EXPECT().
			Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, b entity.Book) error {
				assert.Equal(t, "New Author", b.Author)
				assert.Equal(t, "New Name", b.Name)
				assert.Equal(t, entity.StatusDamage, b.Status)
				require.NotNil(t, b.ModDate)
				return nil
			})

		gomock.InOrder(
			f.links.EXPECT().DeleteByBookID(ctx, int64(7)).Return(int64(2), nil),
			f.categories.EXPECT().GetByCode(ctx, entity.CategoryCook).Return(entity.Category{ID: 6, Name: "cook"}, nil),
			f.links.EXPECT().Link(ctx, int64(7), int64(6)).Return(entity.BookCategory{ID: 3, BookID: 7, CategoryID: 6}, nil),
		)

		view, err := f.uc.Modify(ctx, usecase.ModifyBookParams{
			BookID:     7,
			Author:     "New Author",
			Name:       "New Name",
			Status:     entity.StatusDamage,
			Categories: []entity.CategoryCode{entity.CategoryCook},
		})

		require.NoError(t, err)
		assert.Equal(t, []entity.CategoryCode{entity.CategoryCook}, view.Categories)
		assert.NotEqual(t, "", view.ModDate)
	})

	t.Run("error - not found", func(t *testing.T) {
		f := newFixture(t)

		f.books.EXPECT().GetByID(ctx, int64(99)).Return(entity.Book{}, usecase.ErrBookNotFound)

		_, err := f.uc.Modify(ctx, usecase.ModifyBookParams{
			BookID:     99,
			Author:     "A",
			Name:       "B",
			Status:     entity.StatusGood,
			Categories: []entity.CategoryCode{entity.CategoryCook},
		})

		assert.ErrorIs(t, err, usecase.ErrBookNotFound)
	})

	t.Run("error - duplicate category codes", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.uc.Modify(ctx, usecase.ModifyBookParams{
			BookID:     7,
			Author:     "A",
			Name:       "B",
			Status:     entity.StatusGood,
			Categories: []entity.CategoryCode{entity.CategoryIT, entity.CategoryIT},
		})

		assert.ErrorIs(t, err, usecase.ErrDuplicateCategory)
	})
}

func TestBookUsecase_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success - links removed first", func(t *testing.T) {
		f := newFixture(t)

		gomock.InOrder(
			f.links.EXPECT().DeleteByBookID(ctx, int64(7)).Return(int64(2), nil),
			f.books.EXPECT().GetByID(ctx, int64(7)).Return(entity.Book{ID: 7, RegDate: regDate}, nil),
			f.books.EXPECT().Delete(ctx, int64(7)).Return(nil),
		)

		assert.NoError(t, f.uc.Delete(ctx, 7))
	})

	t.Run("error - book missing after link cleanup", func(t *testing.T) {
		f := newFixture(t)

		gomock.InOrder(
			f.links.EXPECT().DeleteByBookID(ctx, int64(99)).Return(int64(0), nil),
			f.books.EXPECT().GetByID(ctx, int64(99)).Return(entity.Book{}, usecase.ErrBookNotFound),
		)

		assert.ErrorIs(t, f.uc.Delete(ctx, 99), usecase.ErrBookNotFound)
	})
}
