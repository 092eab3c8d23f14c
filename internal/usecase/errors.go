package usecase

import "errors"

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")

	ErrDuplicateCategory    = errors.New("duplicate category code")
	ErrDuplicateAssociation = errors.New("book is already linked to category")

	ErrInvalidAuthor     = errors.New("author filter must not be blank")
	ErrInvalidName       = errors.New("name filter must not be blank")
	ErrInvalidPageNumber = errors.New("page number must be positive")
	ErrInvalidPageSize   = errors.New("page size must be positive")
)
