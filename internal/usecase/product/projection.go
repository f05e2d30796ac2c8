package product

import (
	"encoding/json"

	domain "minishop/catalog/internal/domain/product"
)

// V2Currency is the fixed currency code reported by the v2 contract.
// It is not stored anywhere.
const V2Currency = "GBP"

// PagedResult is the v1 paging envelope. Total counts every matching record,
// independent of the page.
type PagedResult[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total"`
}

// ProductV2View is the v2 product shape: no timestamp, plus a currency.
type ProductV2View struct {
	ID       int64       `json:"id"`
	SKU      string      `json:"sku"`
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Currency string      `json:"currency"`
}

// ToV2View projects a stored product into the v2 view.
func ToV2View(p *domain.Product) ProductV2View {
	return ProductV2View{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    domain.FormatPrice(p.Price),
		Currency: V2Currency,
	}
}
