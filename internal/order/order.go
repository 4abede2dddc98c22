package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses written by this service. Documents from elsewhere may carry
// any string; a missing one reads as StatusUnknown.
const (
	StatusSucceeded = "succeeded"
	StatusPending   = "pending"
	StatusUnknown   = "unknown"
)

var (
	ErrNotAuthenticated = errors.New("user is not authenticated")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrNotFound         = errors.New("order not found")
)

// PersistenceError means the document store rejected the write. PaymentID
// identifies the charge that has no order record.
type PersistenceError struct {
	PaymentID string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order for payment %s: %v", e.PaymentID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	ImageURL *string         `json:"imageUrl,omitempty"`
}

type ShippingInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// Missing returns the names of required fields that are blank.
func (s ShippingInfo) Missing() []string {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", s.Name},
		{"address", s.Address},
		{"city", s.City},
		{"zip", s.Zip},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func (s ShippingInfo) Trimmed() ShippingInfo {
	return ShippingInfo{
		Name:    strings.TrimSpace(s.Name),
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
		Zip:     strings.TrimSpace(s.Zip),
	}
}

// Order is a persisted purchase. Items and TotalAmount are the cart snapshot
// taken when checkout started.
type Order struct {
	ID            string          `json:"id"`
	PaymentID     string          `json:"paymentId"`
	UserID        string          `json:"userId"`
	UserEmail     string          `json:"userEmail,omitempty"`
	Items         []Item          `json:"items"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	ShippingInfo  ShippingInfo    `json:"shippingInfo"`
	PaymentStatus string          `json:"paymentStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}
