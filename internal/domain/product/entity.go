package product

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates a product could not be located.
	ErrNotFound = errors.New("product not found")
	// ErrDuplicateSKU signals SKU uniqueness constraint breaches.
	ErrDuplicateSKU = errors.New("product with SKU already exists")
)

const (
	MaxSKULength  = 50
	MaxNameLength = 200
	PriceScale    = 2
)

// MaxPrice is the largest price the NUMERIC(18, 2) column holds.
var MaxPrice = decimal.RequireFromString("9999999999999999.99")

// Product captures the state of an individual product.
type Product struct {
	ID         int64           `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	CreatedUTC time.Time       `json:"createdUtc"`
}

// MarshalJSON renders the price as a plain JSON number with two fraction digits.
func (p Product) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID         int64       `json:"id"`
		SKU        string      `json:"sku"`
		Name       string      `json:"name"`
		Price      json.Number `json:"price"`
		CreatedUTC time.Time   `json:"createdUtc"`
	}
	return json.Marshal(wire{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Price:      FormatPrice(p.Price),
		CreatedUTC: p.CreatedUTC,
	})
}

// FormatPrice renders a price at the persisted scale.
func FormatPrice(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(PriceScale))
}

// ValidationError reports every rule a candidate product broke, keyed by field.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a failure for field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no failures were recorded.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Candidate is a product that has not been persisted yet.
type Candidate struct {
	SKU   string
	Name  string
	Price decimal.Decimal
}

// Normalize trims surrounding whitespace from the textual fields.
func (c Candidate) Normalize() Candidate {
	c.SKU = strings.TrimSpace(c.SKU)
	c.Name = strings.TrimSpace(c.Name)
	return c
}

// Validate applies the creation rules. A nil return means the candidate may be stored.
func (c Candidate) Validate() error {
	verr := &ValidationError{}
	switch {
	case c.SKU == "":
		verr.Add("sku", "must not be empty")
	case utf8.RuneCountInString(c.SKU) > MaxSKULength:
		verr.Add("sku", "must be 50 characters or fewer")
	}
	switch {
	case c.Name == "":
		verr.Add("name", "must not be empty")
	case utf8.RuneCountInString(c.Name) > MaxNameLength:
		verr.Add("name", "must be 200 characters or fewer")
	}
	if !c.Price.GreaterThan(decimal.Zero) {
		verr.Add("price", "must be greater than 0")
	} else if c.Price.GreaterThan(MaxPrice) {
		verr.Add("price", "must be at most 9999999999999999.99")
	} else if !c.Price.Equal(c.Price.Truncate(PriceScale)) {
		verr.Add("price", "must have at most 2 decimal places")
	}
	if verr.Empty() {
		return nil
	}
	return verr
}
