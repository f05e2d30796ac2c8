package product

import "context"

// ListFilter narrows and slices product listings.
// Search is a case-insensitive substring match on Name; empty means no filter.
type ListFilter struct {
	Search string
	Offset int
	Limit  int
}

// Repository defines persistence behaviours for products.
//
// List orders by CreatedUTC descending with ID descending as the tiebreak,
// filtering before ordering and ordering before Offset/Limit. A Limit of zero
// or less returns every matching row.
type Repository interface {
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	Insert(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	Delete(ctx context.Context, id int64) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
