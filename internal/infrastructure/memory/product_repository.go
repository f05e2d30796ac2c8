// Package memory keeps products in process memory. It backs the service when
// STORE_DRIVER=memory and stands in for PostgreSQL in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "minishop/catalog/internal/domain/product"
)

// ProductRepository is a mutex-guarded product table with a unique SKU index.
type ProductRepository struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Product
	bySKU  map[string]int64
}

// NewProductRepository constructs an empty repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		byID:  make(map[int64]domain.Product),
		bySKU: make(map[string]int64),
	}
}

var _ domain.Repository = (*ProductRepository)(nil)

// Count returns the number of products whose name matches search.
func (r *ProductRepository) Count(_ context.Context, search string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(search)
	n := 0
	for _, p := range r.byID {
		if matches(p, needle) {
			n++
		}
	}
	return n, nil
}

// List returns matching products newest first.
func (r *ProductRepository) List(_ context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	needle := strings.ToLower(filter.Search)
	matched := make([]domain.Product, 0, len(r.byID))
	for _, p := range r.byID {
		if matches(p, needle) {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedUTC.Equal(matched[j].CreatedUTC) {
			return matched[i].CreatedUTC.After(matched[j].CreatedUTC)
		}
		return matched[i].ID > matched[j].ID
	})

	offset := max(filter.Offset, 0)
	if offset >= len(matched) {
		return []*domain.Product{}, nil
	}
	matched = matched[offset:]
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	products := make([]*domain.Product, len(matched))
	for i := range matched {
		p := matched[i]
		products[i] = &p
	}
	return products, nil
}

// Insert assigns the next id and stores the product.
func (r *ProductRepository) Insert(_ context.Context, product *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySKU[product.SKU]; exists {
		return domain.ErrDuplicateSKU
	}
	r.nextID++
	product.ID = r.nextID
	r.byID[product.ID] = *product
	r.bySKU[product.SKU] = product.ID
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return domain.ErrNotFound
	}
	delete(r.byID, id)
	delete(r.bySKU, p.SKU)
	return nil
}

// Ping always succeeds.
func (r *ProductRepository) Ping(context.Context) error {
	return nil
}

func matches(p domain.Product, needle string) bool {
	return needle == "" || strings.Contains(strings.ToLower(p.Name), needle)
}
