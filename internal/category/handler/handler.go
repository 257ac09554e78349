package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-menu-service/internal/api"
	"github.com/fekuna/omnipos-menu-service/internal/category"
	"github.com/fekuna/omnipos-menu-service/internal/category/dto"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) Mount(r chi.Router) {
	r.Get("/catalog", h.GetCatalogTree)
	r.Get("/categories", h.ListCategories)
	r.Post("/categories", h.CreateCategory)
	r.Get("/categories/{id}", h.GetCategory)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
	r.Post("/categories/{id}/number", h.SetCategoryNumber)
}

type CategoryRequest struct {
	ParentID *string `json:"parent_id"`
	Name     string  `json:"name" validate:"required,max=255"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=1024"`
}

type NumberRequest struct {
	Number *int `json:"number" validate:"required"`
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	cat, err := h.uc.CreateCategory(r.Context(), &dto.CreateCategoryInput{
		ParentID: req.ParentID,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}

	api.Message(w, r, http.StatusCreated, cat, "CategoryCreated", map[string]interface{}{"Name": cat.Name})
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	cat, err := h.uc.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Data(w, http.StatusOK, cat)
}

// ListCategories returns the flat list with full path names. A parent_id
// query parameter switches to one sibling group ("" for the root).
func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("parent_id") {
		cats, err := h.uc.ListNestedNames(r.Context())
		if err != nil {
			api.Fail(w, r, h.logger, err)
			return
		}
		api.List(w, cats, len(cats))
		return
	}

	parentID := q.Get("parent_id")
	filters := &dto.CategoryFilters{ParentID: &parentID}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	cats, total, err := h.uc.ListCategories(r.Context(), filters)
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.List(w, cats, total)
}

func (h *CategoryHandler) GetCatalogTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.uc.GetCatalogTree(r.Context())
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Data(w, http.StatusOK, tree)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	cat, err := h.uc.UpdateCategory(r.Context(), &dto.UpdateCategoryInput{
		ID:       chi.URLParam(r, "id"),
		ParentID: req.ParentID,
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}

	api.Message(w, r, http.StatusOK, cat, "CategoryUpdated", map[string]interface{}{"Name": cat.Name})
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Message(w, r, http.StatusOK, nil, "CategoryRemoved", nil)
}

func (h *CategoryHandler) SetCategoryNumber(w http.ResponseWriter, r *http.Request) {
	var req NumberRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	if err := h.uc.SetCategoryNumber(r.Context(), chi.URLParam(r, "id"), *req.Number); err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Message(w, r, http.StatusCreated, nil, "NumberUpdated", nil)
}
