package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domain "minishop/catalog/internal/domain/product"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productColumns = `id, sku, name, price::text, created_utc`

// ProductRepository persists products in PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository constructs a repository.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

var _ domain.Repository = (*ProductRepository)(nil)

// Count returns the number of products whose name contains search.
func (r *ProductRepository) Count(ctx context.Context, search string) (int, error) {
	query := `SELECT count(*) FROM products`
	var args []any
	if search != "" {
		query += ` WHERE name ILIKE $1`
		args = append(args, likePattern(search))
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// List returns matching products newest first, sliced by offset and limit.
func (r *ProductRepository) List(ctx context.Context, filter domain.ListFilter) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []any
	if filter.Search != "" {
		args = append(args, likePattern(filter.Search))
		query += fmt.Sprintf(" WHERE name ILIKE $%d", len(args))
	}
	query += " ORDER BY created_utc DESC, id DESC"
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Insert stores the product inside its own transaction and fills in the
// generated id. The transaction is rolled back on every path that does not
// reach Commit.
func (r *ProductRepository) Insert(ctx context.Context, product *domain.Product) error {
	const query = `
INSERT INTO products (sku, name, price, created_utc)
VALUES ($1, $2, $3::numeric, $4)
RETURNING id
`
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	err = tx.QueryRow(ctx, query,
		product.SKU,
		product.Name,
		product.Price.StringFixed(domain.PriceScale),
		product.CreatedUTC,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSKU
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	product.ID = id
	return nil
}

// GetByID fetches a product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return product, nil
}

// Delete removes a product by id.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the pool can reach the database.
func (r *ProductRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p     domain.Product
		price string
	)
	err := row.Scan(
		&p.ID,
		&p.SKU,
		&p.Name,
		&price,
		&p.CreatedUTC,
	)
	if err != nil {
		return nil, err
	}
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price of product %d: %w", p.ID, err)
	}
	p.CreatedUTC = p.CreatedUTC.UTC()
	return &p, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps search for a substring ILIKE match with wildcards escaped.
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(search) + "%"
}
