package cart

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/pricing"
)

var ErrInvalidItem = errors.New("cart item needs an id and a positive price")

// Item is one product line in the cart.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL *string         `json:"imageUrl,omitempty"`
}

func (i Item) UnitPrice() decimal.Decimal { return i.Price }
func (i Item) Units() int                 { return i.Quantity }

func (i Item) LineTotal() decimal.Decimal {
	return pricing.LineTotal(i.Price, i.Quantity)
}

// Snapshot is an immutable copy of the cart lines at one point in time.
type Snapshot []Item

func (s Snapshot) Total() decimal.Decimal {
	return pricing.Total(s)
}

func (s Snapshot) IsEmpty() bool { return len(s) == 0 }

// Cart keeps insertion order and at most one line per product id.
// The zero value is an empty cart.
type Cart struct {
	items []Item
}

func New(items ...Item) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if idx := c.indexOf(it.ID); idx >= 0 {
			c.items[idx].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

func (c *Cart) indexOf(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

// Add increments the quantity of an existing line, keeping its name and
// price, or appends the item with quantity 1.
func (c *Cart) Add(item Item) error {
	if strings.TrimSpace(item.ID) == "" || !item.Price.IsPositive() {
		return ErrInvalidItem
	}
	if idx := c.indexOf(item.ID); idx >= 0 {
		c.items[idx].Quantity++
		return nil
	}
	item.Quantity = 1
	c.items = append(c.items, item)
	return nil
}

// Remove reports whether a line was deleted.
func (c *Cart) Remove(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// SetQuantity ignores quantities below 1 and unknown ids.
func (c *Cart) SetQuantity(id string, quantity int) bool {
	if quantity < 1 {
		return false
	}
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items[idx].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Total() decimal.Decimal {
	return pricing.Total(c.items)
}

func (c *Cart) Len() int { return len(c.items) }

func (c *Cart) Snapshot() Snapshot {
	out := make(Snapshot, len(c.items))
	for i, it := range c.items {
		if it.ImageURL != nil {
			img := *it.ImageURL
			it.ImageURL = &img
		}
		out[i] = it
	}
	return out
}

type document struct {
	Items []Item `json:"items"`
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	items := c.items
	if items == nil {
		items = []Item{}
	}
	return json.Marshal(document{Items: items})
}

// UnmarshalJSON drops lines that could never have been added: empty ids,
// non-positive prices and quantities below 1.
func (c *Cart) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	valid := make([]Item, 0, len(doc.Items))
	for _, it := range doc.Items {
		if it.ID == "" || !it.Price.IsPositive() || it.Quantity < 1 {
			continue
		}
		valid = append(valid, it)
	}
	*c = *New(valid...)
	return nil
}
