package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookcatalog/internal/entity"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/usecase"
)

// CatalogService is the boundary contract the handlers program against.
type CatalogService interface {
	Save(ctx context.Context, p usecase.SaveBookParams) (usecase.BookView, error)
	FindByID(ctx context.Context, id int64) (usecase.BookView, error)
	List(ctx context.Context, f usecase.ListFilter) (usecase.BookPage, error)
	Modify(ctx context.Context, p usecase.ModifyBookParams) (usecase.BookView, error)
	Delete(ctx context.Context, id int64) error
}

type BookHandler struct {
	catalog CatalogService
}

func NewBookHandler(catalog CatalogService) *BookHandler {
	return &BookHandler{catalog: catalog}
}

// bookPayload is the body shared by save and modify.
type bookPayload struct {
	Author     string   `json:"author" validate:"required,max=50"`
	Name       string   `json:"name" validate:"required,max=50"`
	Status     string   `json:"status" validate:"required,oneof=good damage lost"`
	Categories []string `json:"categories" validate:"required,min=1,dive,oneof=literature economic_management humanity it science cook cook_general"`
}

// Collection serves /v1/books: GET lists, POST saves.
func (h *BookHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.save(w, r)
	default:
		httpx.JSONError(r, w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	}
}

// Item serves /v1/books/{id}: GET fetches, PUT modifies, DELETE removes.
func (h *BookHandler) Item(w http.ResponseWriter, r *http.Request) {
	const prefix = "/v1/books/"
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_BOOK_ID", "book id must be an integer", nil)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.findByID(w, r, id)
	case http.MethodPut:
		h.modify(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		httpx.JSONError(r, w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	}
}

func (h *BookHandler) save(w http.ResponseWriter, r *http.Request) {
	payload, ok := decodeBookPayload(w, r)
	if !ok {
		return
	}

	view, err := h.catalog.Save(r.Context(), usecase.SaveBookParams{
		Author:     payload.Author,
		Name:       payload.Name,
		Status:     entity.Status(payload.Status),
		Categories: toCategoryCodes(payload.Categories),
	})
	if err != nil {
		writeCatalogError(r, w, err)
		return
	}
	httpx.JSONSuccessCreated(r, w, view)
}

func (h *BookHandler) findByID(w http.ResponseWriter, r *http.Request, id int64) {
	view, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		writeCatalogError(r, w, err)
		return
	}
	httpx.JSONSuccess(r, w, view)
}

func (h *BookHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseListFilter(w, r)
	if !ok {
		return
	}

	page, err := h.catalog.List(r.Context(), filter)
	if err != nil {
		writeCatalogError(r, w, err)
		return
	}
	httpx.JSONSuccess(r, w, page)
}

func (h *BookHandler) modify(w http.ResponseWriter, r *http.Request, id int64) {
	payload, ok := decodeBookPayload(w, r)
	if !ok {
		return
	}

	view, err := h.catalog.Modify(r.Context(), usecase.ModifyBookParams{
		BookID:     id,
		Author:     payload.Author,
		Name:       payload.Name,
		Status:     entity.Status(payload.Status),
		Categories: toCategoryCodes(payload.Categories),
	})
	if err != nil {
		writeCatalogError(r, w, err)
		return
	}
	httpx.JSONSuccess(r, w, view)
}

func (h *BookHandler) delete(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.catalog.Delete(r.Context(), id); err != nil {
		writeCatalogError(r, w, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

func decodeBookPayload(w http.ResponseWriter, r *http.Request) (bookPayload, bool) {
	var payload bookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_BODY", "request body must be valid JSON", nil)
		return bookPayload{}, false
	}
	if errs := ValidateStruct(payload); errs != nil {
		httpx.JSONError(r, w, http.StatusBadRequest, "VALIDATION_FAILED", "request validation failed", toErrorDetails(errs))
		return bookPayload{}, false
	}
	return payload, true
}

// parseListFilter maps query params onto the filter; a param left out of the
// URL stays nil so it contributes no search predicate.
func parseListFilter(w http.ResponseWriter, r *http.Request) (usecase.ListFilter, bool) {
	q := r.URL.Query()
	filter := usecase.ListFilter{PageNumber: 1, PageSize: 10}

	if q.Has("categories") {
		codes := toCategoryCodes(strings.Split(q.Get("categories"), ","))
		for _, code := range codes {
			if !code.Valid() {
				httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_CATEGORY", "unknown category code: "+string(code), nil)
				return usecase.ListFilter{}, false
			}
		}
		filter.Categories = codes
	}
	if q.Has("status") {
		status := entity.Status(q.Get("status"))
		if !status.Valid() {
			httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_STATUS", "unknown status: "+string(status), nil)
			return usecase.ListFilter{}, false
		}
		filter.Status = &status
	}
	if q.Has("author") {
		author := q.Get("author")
		filter.Author = &author
	}
	if q.Has("name") {
		name := q.Get("name")
		filter.Name = &name
	}
	if q.Has("pageNumber") {
		n, err := strconv.Atoi(q.Get("pageNumber"))
		if err != nil {
			httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_PAGE_NUMBER", "page number must be an integer", nil)
			return usecase.ListFilter{}, false
		}
		filter.PageNumber = n
	}
	if q.Has("pageSize") {
		n, err := strconv.Atoi(q.Get("pageSize"))
		if err != nil {
			httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_PAGE_SIZE", "page size must be an integer", nil)
			return usecase.ListFilter{}, false
		}
		filter.PageSize = n
	}

	return filter, true
}

func writeCatalogError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrBookNotFound):
		httpx.JSONError(r, w, http.StatusNotFound, "BOOK_NOT_FOUND", "book not found", nil)
	case errors.Is(err, usecase.ErrCategoryNotFound):
		httpx.JSONError(r, w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found", nil)
	case errors.Is(err, usecase.ErrDuplicateCategory):
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_CATEGORY", "duplicate category code", nil)
	case errors.Is(err, usecase.ErrInvalidAuthor):
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_AUTHOR", "author filter must not be blank", nil)
	case errors.Is(err, usecase.ErrInvalidName):
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_NAME", "name filter must not be blank", nil)
	case errors.Is(err, usecase.ErrInvalidPageNumber):
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_PAGE_NUMBER", "page number must be positive", nil)
	case errors.Is(err, usecase.ErrInvalidPageSize):
		httpx.JSONError(r, w, http.StatusBadRequest, "INVALID_PAGE_SIZE", "page size must be positive", nil)
	case errors.Is(err, usecase.ErrDuplicateAssociation):
		httpx.JSONError(r, w, http.StatusConflict, "DUPLICATE_ASSOCIATION", "book is already linked to category", nil)
	default:
		httpx.JSONError(r, w, http.StatusInternalServerError, "INTERNAL_ERROR", "server error", nil)
	}
}

func toCategoryCodes(raw []string) []entity.CategoryCode {
	codes := make([]entity.CategoryCode, 0, len(raw))
	for _, s := range raw {
		codes = append(codes, entity.CategoryCode(s))
	}
	return codes
}

func toErrorDetails(errs []ValidationError) []httpx.ErrorDetail {
	details := make([]httpx.ErrorDetail, 0, len(errs))
	for _, e := range errs {
		details = append(details, httpx.ErrorDetail{Field: e.Field, Message: e.Message})
	}
	return details
}
