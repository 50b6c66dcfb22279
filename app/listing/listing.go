// Package listing pages through the phone catalog.
//
// A listing counts the phones matching the category filter, derives the number
// of pages, pulls an out-of-range page number back to the last page, and
// fetches that page. An empty page is reported in the response body rather
// than as a failed request.
package listing

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mytheresa/phone-catalog/models"
)

// TracerName identifies spans emitted by this package.
const TracerName = "github.com/mytheresa/phone-catalog/app/listing"

// EmptyResultMessage is the body-level error of a listing with no items.
const EmptyResultMessage = "no items in selected category"

// ErrInvalidPageSize is returned for a page size below 1.
var ErrInvalidPageSize = errors.New("page size must be at least 1")

type PhoneFinder interface {
	CountPhones(ctx context.Context, filters models.PhoneFilters) (int64, error)
	FindPhones(ctx context.Context, filters models.PhoneFilters, offset, limit int) ([]models.Phone, error)
}

// Query selects one page of a listing. PageNo is 1-based. A PageNo below 1
// reads the first page but is reported back unchanged.
type Query struct {
	Category string
	PageNo   int
	PageSize int
}

// Page is one page of a listing.
type Page[T any] struct {
	Items       []T `json:"items"`
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
}

// Response is the envelope returned by the listing endpoint.
type Response[T any] struct {
	Data    T       `json:"data"`
	Success bool    `json:"success"`
	Error   *string `json:"error"`
}

type Service struct {
	repo   PhoneFinder
	cfg    Config
	tracer trace.Tracer
}

func NewService(repo PhoneFinder, cfg Config) *Service {
	return &Service{
		repo:   repo,
		cfg:    cfg,
		tracer: otel.Tracer(TracerName),
	}
}

// DefaultPageSize is the page size used when a request does not name one.
func (s *Service) DefaultPageSize() int {
	return s.cfg.DefaultPageSize
}

// List returns the requested page of phones.
func (s *Service) List(ctx context.Context, q Query) (Page[models.Phone], error) {
	ctx, span := s.tracer.Start(ctx, "catalog.list", trace.WithAttributes(
		attribute.String("catalog.category", q.Category),
		attribute.Int("catalog.page_no", q.PageNo),
		attribute.Int("catalog.page_size", q.PageSize),
	))
	defer span.End()

	if q.PageSize < 1 {
		span.SetStatus(codes.Error, ErrInvalidPageSize.Error())
		return Page[models.Phone]{}, ErrInvalidPageSize
	}
	if q.PageSize > s.cfg.MaxPageSize {
		q.PageSize = s.cfg.MaxPageSize
	}

	filters := models.PhoneFilters{CategoryName: q.Category}

	total, err := s.repo.CountPhones(ctx, filters)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count phones")
		return Page[models.Phone]{}, err
	}

	totalPages := TotalPages(total, q.PageSize)
	pageNo := ClampPage(q.PageNo, totalPages)

	phones, err := s.repo.FindPhones(ctx, filters, Offset(pageNo, q.PageSize), q.PageSize)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find phones")
		return Page[models.Phone]{}, err
	}

	span.SetAttributes(
		attribute.Int64("catalog.total_items", total),
		attribute.Int("catalog.current_page", pageNo),
	)

	if phones == nil {
		phones = []models.Phone{}
	}

	return Page[models.Phone]{
		Items:       phones,
		CurrentPage: pageNo,
		TotalPages:  totalPages,
	}, nil
}

// TotalPages returns ceil(totalItems / pageSize). pageSize must be positive.
func TotalPages(totalItems int64, pageSize int) int {
	size := int64(pageSize)
	return int((totalItems + size - 1) / size)
}

// ClampPage pulls pageNo back to totalPages when it runs past the end.
// With no pages, or a page number below 1, pageNo is returned unchanged.
func ClampPage(pageNo, totalPages int) int {
	if totalPages > 0 && pageNo > totalPages {
		return totalPages
	}
	return pageNo
}

// Offset returns the number of items before pageNo. Page numbers below 1 start
// at the first item.
func Offset(pageNo, pageSize int) int {
	if pageNo < 1 {
		return 0
	}
	return (pageNo - 1) * pageSize
}

// MapPage converts the items of a page, keeping its position.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, len(p.Items))
	for i, item := range p.Items {
		items[i] = fn(item)
	}

	return Page[U]{
		Items:       items,
		CurrentPage: p.CurrentPage,
		TotalPages:  p.TotalPages,
	}
}

// NewResponse wraps a page in the listing envelope. An empty page is marked
// unsuccessful and carries EmptyResultMessage.
func NewResponse[T any](p Page[T]) Response[Page[T]] {
	if p.Items == nil {
		p.Items = []T{}
	}

	resp := Response[Page[T]]{
		Data:    p,
		Success: len(p.Items) > 0,
	}
	if !resp.Success {
		msg := EmptyResultMessage
		resp.Error = &msg
	}
	return resp
}
