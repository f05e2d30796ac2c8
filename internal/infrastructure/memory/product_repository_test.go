package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "minishop/catalog/internal/domain/product"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, repo *ProductRepository, base time.Time, names ...string) {
	t.Helper()
	for i, name := range names {
		err := repo.Insert(context.Background(), &domain.Product{
			SKU:        fmt.Sprintf("SKU-%d", i),
			Name:       name,
			Price:      decimal.NewFromInt(int64(i + 1)),
			CreatedUTC: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func TestInsertAssignsIncreasingIDs(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	var last int64
	for i := 0; i < 5; i++ {
		p := &domain.Product{SKU: fmt.Sprintf("S%d", i), Name: "n", Price: decimal.NewFromInt(1)}
		require.NoError(t, repo.Insert(ctx, p))
		assert.Greater(t, p.ID, last)
		last = p.ID
	}
}

func TestInsertDuplicateSKU(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, &domain.Product{SKU: "A1", Name: "first"}))
	err := repo.Insert(ctx, &domain.Product{SKU: "A1", Name: "second"})
	assert.ErrorIs(t, err, domain.ErrDuplicateSKU)

	n, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestConcurrentDuplicateSKUOnlyOneWins(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.Insert(ctx, &domain.Product{SKU: "RACE", Name: "racer"})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrDuplicateSKU)
	}
	assert.Equal(t, 1, succeeded)
}

func TestListOrdersNewestFirstWithIDTiebreak(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	same := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Insert(ctx, &domain.Product{SKU: fmt.Sprintf("T%d", i), Name: "tie", CreatedUTC: same}))
	}
	require.NoError(t, repo.Insert(ctx, &domain.Product{SKU: "NEW", Name: "newest", CreatedUTC: same.Add(time.Second)}))

	items, err := repo.List(ctx, domain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, []int64{4, 3, 2, 1}, []int64{items[0].ID, items[1].ID, items[2].ID, items[3].ID})
}

func TestListFilterAndSlice(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()
	seed(t, repo, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "Red Widget", "Blue Gadget", "green widget", "Widgetry")

	n, err := repo.Count(ctx, "WIDGET")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	items, err := repo.List(ctx, domain.ListFilter{Search: "widget", Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "green widget", items[0].Name)

	items, err = repo.List(ctx, domain.ListFilter{Search: "widget", Offset: 10, Limit: 5})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestGetAndDelete(t *testing.T) {
	repo := NewProductRepository()
	ctx := context.Background()

	p := &domain.Product{SKU: "A1", Name: "Widget"}
	require.NoError(t, repo.Insert(ctx, p))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "A1", got.SKU)

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err = repo.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, p.ID), domain.ErrNotFound)

	// the SKU is free again and the id is not reused
	again := &domain.Product{SKU: "A1", Name: "Widget"}
	require.NoError(t, repo.Insert(ctx, again))
	assert.Greater(t, again.ID, p.ID)
}
