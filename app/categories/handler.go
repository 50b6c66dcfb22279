package categories

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mytheresa/phone-catalog/app/api"
	"github.com/mytheresa/phone-catalog/models"
)

// ErrMissingName is returned when a category lacks a name or a normalized name.
var ErrMissingName = errors.New("missing name or normalizedName")

type PhoneSummary struct {
	ID          uint    `json:"phoneId"`
	Name        string  `json:"name"`
	Model       string  `json:"model"`
	Description *string `json:"description"`
	Image       *string `json:"image,omitempty"`
	Price       float64 `json:"price"`
}

// CategoryResponse lists the phones of a category. The phones do not point back
// to the category.
type CategoryResponse struct {
	ID             uint           `json:"categoryId"`
	Name           string         `json:"name"`
	NormalizedName string         `json:"normalizedName"`
	Phones         []PhoneSummary `json:"phones"`
}

type CategoryInput struct {
	ID             uint   `json:"categoryId"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
}

type CategoryProvider interface {
	GetAllCategories(ctx context.Context) ([]models.Category, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

type CategoryHandler struct {
	repo   CategoryProvider
	logger *slog.Logger
}

func NewCategoryHandler(r CategoryProvider, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{
		repo:   r,
		logger: logger.With("handler", "categories"),
	}
}

// Register mounts the category endpoints on mux.
func (h *CategoryHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /categories", h.HandleGetAll)
	mux.HandleFunc("GET /categories/{id}", h.HandleGet)
	mux.HandleFunc("POST /categories", h.HandleCreate)
	mux.HandleFunc("PUT /categories/{id}", h.HandleUpdate)
	mux.HandleFunc("DELETE /categories/{id}", h.HandleDelete)
}

func (h *CategoryHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.GetAllCategories(r.Context())
	if err != nil {
		api.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Errorf("failed to fetch categories: %w", err))
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = toResponse(c)
	}

	api.RespondJSON(w, http.StatusOK, response)
}

func (h *CategoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	category, err := h.repo.GetCategory(r.Context(), id)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, toResponse(*category))
}

func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := api.DecodeBody[CategoryInput](r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	if input.Name == "" || input.NormalizedName == "" {
		api.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingName)
		return
	}

	category := &models.Category{
		Name:           input.Name,
		NormalizedName: input.NormalizedName,
	}

	if err := h.repo.CreateCategory(r.Context(), category); err != nil {
		api.RespondError(w, h.logger, http.StatusInternalServerError, fmt.Errorf("failed to create category: %w", err))
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/categories/%d", category.ID))
	api.RespondJSON(w, http.StatusCreated, toResponse(*category))
}

// HandleUpdate rewrites the name and normalized name of a category. The body
// must carry the same categoryId as the route.
func (h *CategoryHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	input, err := api.DecodeBody[CategoryInput](r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	if input.ID != id {
		api.RespondError(w, h.logger, http.StatusBadRequest, api.ErrIDMismatch)
		return
	}

	err = h.repo.UpdateCategory(r.Context(), &models.Category{
		ID:             input.ID,
		Name:           input.Name,
		NormalizedName: input.NormalizedName,
	})
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	if err := h.repo.DeleteCategory(r.Context(), id); err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toResponse(c models.Category) CategoryResponse {
	phones := make([]PhoneSummary, len(c.Phones))
	for i, p := range c.Phones {
		phones[i] = PhoneSummary{
			ID:          p.ID,
			Name:        p.Name,
			Model:       p.Model,
			Description: p.Description,
			Image:       p.Image,
			Price:       p.Price.InexactFloat64(),
		}
	}

	return CategoryResponse{
		ID:             c.ID,
		Name:           c.Name,
		NormalizedName: c.NormalizedName,
		Phones:         phones,
	}
}
