package usecase

import (
	"testing"

	"bookcatalog/internal/entity"

	"github.com/stretchr/testify/assert"
)

func TestPageURL(t *testing.T) {
	status := entity.StatusGood
	author := "Kim"
	name := "SQL"

	full := ListFilter{
		Categories: []entity.CategoryCode{entity.CategoryCook, entity.CategoryCookGeneral},
		Status:     &status,
		Author:     &author,
		Name:       &name,
		PageNumber: 2,
		PageSize:   10,
	}

	t.Run("keeps every present filter field", func(t *testing.T) {
		assert.Equal(t,
			"/v1/books?categories=cook,cook_general&status=good&author=Kim&name=SQL&pageNumber=1&pageSize=10",
			pageURL(full, -1, 3))
		assert.Equal(t,
			"/v1/books?categories=cook,cook_general&status=good&author=Kim&name=SQL&pageNumber=3&pageSize=10",
			pageURL(full, +1, 3))
	})

	t.Run("omits absent fields", func(t *testing.T) {
		f := ListFilter{PageNumber: 2, PageSize: 5}
		assert.Equal(t, "/v1/books?pageNumber=1&pageSize=5", pageURL(f, -1, 4))
		assert.Equal(t, "/v1/books?pageNumber=3&pageSize=5", pageURL(f, +1, 4))
	})

	t.Run("empty at the edges", func(t *testing.T) {
		first := ListFilter{PageNumber: 1, PageSize: 10}
		assert.Equal(t, "", pageURL(first, -1, 3))

		last := ListFilter{PageNumber: 3, PageSize: 10}
		assert.Equal(t, "", pageURL(last, +1, 3))

		single := ListFilter{PageNumber: 1, PageSize: 10}
		assert.Equal(t, "", pageURL(single, -1, 1))
		assert.Equal(t, "", pageURL(single, +1, 1))
	})
}

func TestHasDuplicateCode(t *testing.T) {
	assert.False(t, hasDuplicateCode(nil))
	assert.False(t, hasDuplicateCode([]entity.CategoryCode{entity.CategoryIT, entity.CategoryScience}))
	assert.True(t, hasDuplicateCode([]entity.CategoryCode{entity.CategoryIT, entity.CategoryScience, entity.CategoryIT}))
}
