package catalog

import "github.com/shopspring/decimal"

// Product maps to the `products` table. Price is in major currency units.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
}
