package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/mytheresa/phone-catalog/app/api"
	"github.com/mytheresa/phone-catalog/app/listing"
	"github.com/mytheresa/phone-catalog/models"
)

// ErrMissingFile is returned when an upload carries no "file" part.
var ErrMissingFile = errors.New("multipart field \"file\" is required")

// ErrFileTooLarge is returned when an upload exceeds the configured size limit.
var ErrFileTooLarge = errors.New("file exceeds maximum upload size")

// ErrMissingName is returned when a phone is submitted without a name.
var ErrMissingName = errors.New("missing name")

type Category struct {
	ID             uint   `json:"categoryId"`
	Name           string `json:"name"`
	NormalizedName string `json:"normalizedName"`
}

type Phone struct {
	ID          uint      `json:"phoneId"`
	Name        string    `json:"name"`
	Model       string    `json:"model"`
	Description *string   `json:"description"`
	Image       *string   `json:"image,omitempty"`
	Price       float64   `json:"price"`
	CategoryID  *uint     `json:"categoryId"`
	Category    *Category `json:"category,omitempty"`
}

type PhoneInput struct {
	ID          uint            `json:"phoneId"`
	Name        string          `json:"name"`
	Model       string          `json:"model"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  *uint           `json:"categoryId"`
}

type PhoneRepository interface {
	listing.PhoneFinder
	ImageRepository
	GetPhone(ctx context.Context, id uint) (*models.Phone, error)
	CreatePhone(ctx context.Context, phone *models.Phone) error
	UpdatePhone(ctx context.Context, phone *models.Phone) error
}

// Options tune upload handling.
type Options struct {
	// MaxUploadSize caps the multipart body of image uploads, in bytes.
	MaxUploadSize int64

	// PublicBaseURL, when set, replaces the request scheme and host in image references.
	PublicBaseURL string
}

type CatalogHandler struct {
	repo     PhoneRepository
	listings *listing.Service
	images   *Images
	opts     Options
	logger   *slog.Logger
}

func NewCatalogHandler(r PhoneRepository, listings *listing.Service, images *Images, opts Options, logger *slog.Logger) *CatalogHandler {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 10 << 20
	}

	return &CatalogHandler{
		repo:     r,
		listings: listings,
		images:   images,
		opts:     opts,
		logger:   logger.With("handler", "phones"),
	}
}

// Register mounts the phone endpoints on mux.
func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /phones", h.HandleGet)
	mux.HandleFunc("GET /phones/{id}", h.HandleGetPhone)
	mux.HandleFunc("POST /phones", h.HandleCreate)
	mux.HandleFunc("PUT /phones/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /phones/update_image/{id}", h.HandleReplaceImage)
	mux.HandleFunc("POST /phones/{id}", h.HandleAttachImage)
	mux.HandleFunc("DELETE /phones/{id}", h.HandleDelete)
}

// HandleGet serves one page of the phone listing.
// Query parameters: category (normalized name), pageNo, pageSize.
func (h *CatalogHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	query := listing.Query{
		Category: r.URL.Query().Get("category"),
		PageNo:   1,
		PageSize: h.listings.DefaultPageSize(),
	}

	if v := r.URL.Query().Get("pageNo"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			api.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: pageNo", api.ErrInvalidQuery))
			return
		}
		query.PageNo = n
	}

	if v := r.URL.Query().Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			api.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: pageSize", api.ErrInvalidQuery))
			return
		}
		query.PageSize = n
	}

	page, err := h.listings.List(r.Context(), query)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	api.RespondJSON(w, http.StatusOK, listing.NewResponse(listing.MapPage(page, toPhone)))
}

func (h *CatalogHandler) HandleGetPhone(w http.ResponseWriter, r *http.Request) {
	phone, ok := h.loadPhone(w, r)
	if !ok {
		return
	}

	api.RespondJSON(w, http.StatusOK, toPhone(*phone))
}

func (h *CatalogHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	input, err := api.DecodeBody[PhoneInput](r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	if input.Name == "" {
		api.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingName)
		return
	}

	phone := input.toModel()
	phone.ID = 0

	if err := h.repo.CreatePhone(r.Context(), phone); err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/phones/%d", phone.ID))
	api.RespondJSON(w, http.StatusCreated, toPhone(*phone))
}

// HandleUpdate rewrites the mutable fields of a phone. The body must carry the
// same phoneId as the route.
func (h *CatalogHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := api.PathID(r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	input, err := api.DecodeBody[PhoneInput](r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	if input.ID != id {
		api.RespondError(w, h.logger, http.StatusBadRequest, api.ErrIDMismatch)
		return
	}

	if err := h.repo.UpdatePhone(r.Context(), input.toModel()); err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleReplaceImage stores an uploaded image for the phone and drops the old one.
func (h *CatalogHandler) HandleReplaceImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.upload(w, r); !ok {
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleAttachImage is the older upload route; it answers with the updated phone.
func (h *CatalogHandler) HandleAttachImage(w http.ResponseWriter, r *http.Request) {
	phone, ok := h.upload(w, r)
	if !ok {
		return
	}

	api.RespondJSON(w, http.StatusOK, toPhone(*phone))
}

// HandleDelete removes a phone together with its image file.
func (h *CatalogHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	phone, ok := h.loadPhone(w, r)
	if !ok {
		return
	}

	if err := h.images.Remove(r.Context(), phone); err != nil {
		api.Respond(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) upload(w http.ResponseWriter, r *http.Request) (*models.Phone, bool) {
	phone, ok := h.loadPhone(w, r)
	if !ok {
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)
	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
			return nil, false
		}
		api.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %v", api.ErrInvalidBody, err))
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		api.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingFile)
		return nil, false
	}
	defer file.Close()

	if err := h.images.Put(r.Context(), phone, file, header.Filename, h.baseURL(r)); err != nil {
		api.Respond(w, h.logger, err)
		return nil, false
	}

	return phone, true
}

func (h *CatalogHandler) loadPhone(w http.ResponseWriter, r *http.Request) (*models.Phone, bool) {
	id, err := api.PathID(r)
	if err != nil {
		api.Respond(w, h.logger, err)
		return nil, false
	}

	phone, err := h.repo.GetPhone(r.Context(), id)
	if err != nil {
		api.Respond(w, h.logger, err)
		return nil, false
	}

	return phone, true
}

// baseURL is the scheme and host image references are built from.
func (h *CatalogHandler) baseURL(r *http.Request) string {
	if h.opts.PublicBaseURL != "" {
		return h.opts.PublicBaseURL
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func (in *PhoneInput) toModel() *models.Phone {
	return &models.Phone{
		ID:          in.ID,
		Name:        in.Name,
		Model:       in.Model,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
	}
}

func toPhone(p models.Phone) Phone {
	phone := Phone{
		ID:          p.ID,
		Name:        p.Name,
		Model:       p.Model,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		CategoryID:  p.CategoryID,
	}
	if p.HasImage() {
		phone.Image = p.Image
	}
	if p.Category != nil {
		phone.Category = &Category{
			ID:             p.Category.ID,
			Name:           p.Category.Name,
			NormalizedName: p.Category.NormalizedName,
		}
	}
	return phone
}
