package handler

import (
	"net/http"
	"strconv"

	"github.com/fekuna/omnipos-menu-service/internal/api"
	"github.com/fekuna/omnipos-menu-service/internal/dish"
	"github.com/fekuna/omnipos-menu-service/internal/dish/dto"
	"github.com/fekuna/omnipos-menu-service/internal/model"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type DishHandler struct {
	uc     dish.UseCase
	logger logger.ZapLogger
}

func NewDishHandler(uc dish.UseCase, log logger.ZapLogger) *DishHandler {
	return &DishHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *DishHandler) Mount(r chi.Router) {
	r.Get("/categories/{id}/dishes", h.ListCategoryDishes)
	r.Post("/dishes", h.CreateDish)
	r.Get("/dishes/search", h.SearchDishes)
	r.Get("/dishes/{id}", h.GetDish)
	r.Put("/dishes/{id}", h.UpdateDish)
	r.Delete("/dishes/{id}", h.DeleteDish)
	r.Post("/dishes/{id}/number", h.SetDishNumber)
	r.Post("/dishes/{id}/toggle-hide", h.ToggleHidden)
}

type DishRequest struct {
	CategoryID  string  `json:"category_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description" validate:"max=4000"`
	Price       float64 `json:"price" validate:"gte=0"`
	Quantity    int     `json:"quantity" validate:"gte=0"`
	ShowUSD     bool    `json:"show_usd"`
	ImageURL    *string `json:"image_url" validate:"omitempty,max=1024"`
}

type UpdateDishRequest struct {
	DishRequest
	DeleteImage bool `json:"delete_image"`
}

type NumberRequest struct {
	Number *int `json:"number" validate:"required"`
}

func (h *DishHandler) CreateDish(w http.ResponseWriter, r *http.Request) {
	var req DishRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	d, err := h.uc.CreateDish(r.Context(), &dto.CreateDishInput{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ShowUSD:     req.ShowUSD,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}

	api.Message(w, r, http.StatusCreated, d, "DishCreated", map[string]interface{}{
		"Name":     d.Name,
		"Category": categoryName(d),
	})
}

func (h *DishHandler) GetDish(w http.ResponseWriter, r *http.Request) {
	d, err := h.uc.GetDish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Data(w, http.StatusOK, d)
}

func (h *DishHandler) ListCategoryDishes(w http.ResponseWriter, r *http.Request) {
	dishes, err := h.uc.ListCategoryDishes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.List(w, dishes, len(dishes))
}

func (h *DishHandler) SearchDishes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := &dto.DishFilters{
		Query:      q.Get("q"),
		CategoryID: q.Get("category_id"),
	}
	filters.IncludeHidden, _ = strconv.ParseBool(q.Get("include_hidden"))
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	dishes, total, err := h.uc.SearchDishes(r.Context(), filters)
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.List(w, dishes, total)
}

func (h *DishHandler) UpdateDish(w http.ResponseWriter, r *http.Request) {
	var req UpdateDishRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	d, err := h.uc.UpdateDish(r.Context(), &dto.UpdateDishInput{
		ID:          chi.URLParam(r, "id"),
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
		ShowUSD:     req.ShowUSD,
		ImageURL:    req.ImageURL,
		DeleteImage: req.DeleteImage,
	})
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}

	api.Message(w, r, http.StatusOK, d, "DishUpdated", map[string]interface{}{"Name": d.Name})
}

func (h *DishHandler) DeleteDish(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.DeleteDish(r.Context(), chi.URLParam(r, "id")); err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Message(w, r, http.StatusOK, nil, "DishRemoved", nil)
}

func (h *DishHandler) SetDishNumber(w http.ResponseWriter, r *http.Request) {
	var req NumberRequest
	if err := api.Decode(w, r, &req); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	if err := h.uc.SetDishNumber(r.Context(), chi.URLParam(r, "id"), *req.Number); err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}
	api.Message(w, r, http.StatusCreated, nil, "NumberUpdated", nil)
}

func (h *DishHandler) ToggleHidden(w http.ResponseWriter, r *http.Request) {
	hidden, err := h.uc.ToggleHidden(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		api.Fail(w, r, h.logger, err)
		return
	}

	messageID := "DishShown"
	if hidden {
		messageID = "DishHidden"
	}
	api.Message(w, r, http.StatusOK, map[string]bool{"is_hidden": hidden}, messageID, nil)
}

func categoryName(d *model.Dish) string {
	if d.Category == nil {
		return ""
	}
	return d.Category.Name
}
