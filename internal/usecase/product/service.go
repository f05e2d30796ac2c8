package product

import (
	"context"
	"math"
	"strings"
	"time"

	domain "minishop/catalog/internal/domain/product"

	"github.com/shopspring/decimal"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// Service encapsulates product use cases for every API version.
type Service struct {
	repo    domain.Repository
	nowFunc func() time.Time
}

// NewService constructs a product service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo:    repo,
		nowFunc: time.Now,
	}
}

// CreateInput contains the payload required for product creation.
type CreateInput struct {
	SKU   string          `json:"sku"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ListInput carries the v1 listing parameters.
type ListInput struct {
	Page     int
	PageSize int
	Search   string
}

// List returns one page of products matching the search, newest first.
// Page and PageSize below 1 are raised to 1; there is no upper bound.
func (s *Service) List(ctx context.Context, input ListInput) (*PagedResult[*domain.Product], error) {
	page := max(input.Page, 1)
	pageSize := max(input.PageSize, 1)
	search := input.Search
	if strings.TrimSpace(search) == "" {
		search = ""
	}

	total, err := s.repo.Count(ctx, search)
	if err != nil {
		return nil, err
	}
	result := &PagedResult[*domain.Product]{
		Items:    []*domain.Product{},
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}
	// a skip that does not fit in an int is past every row
	if page-1 > math.MaxInt/pageSize {
		return result, nil
	}
	items, err := s.repo.List(ctx, domain.ListFilter{
		Search: search,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	})
	if err != nil {
		return nil, err
	}
	result.Items = items
	return result, nil
}

// Create validates the candidate and stores it. Validation failures never reach the store.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Product, error) {
	candidate := domain.Candidate{SKU: input.SKU, Name: input.Name, Price: input.Price}.Normalize()
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	product := &domain.Product{
		SKU:        candidate.SKU,
		Name:       candidate.Name,
		Price:      candidate.Price,
		CreatedUTC: s.nowFunc().UTC(),
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Get fetches a product by id.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes a product.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ListV2 projects every product into the v2 view. No paging, no filter.
func (s *Service) ListV2(ctx context.Context) ([]ProductV2View, error) {
	products, err := s.repo.List(ctx, domain.ListFilter{})
	if err != nil {
		return nil, err
	}
	views := make([]ProductV2View, 0, len(products))
	for _, p := range products {
		views = append(views, ToV2View(p))
	}
	return views, nil
}

// Ping reports store health when the repository supports it.
func (s *Service) Ping(ctx context.Context) error {
	if p, ok := s.repo.(domain.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
