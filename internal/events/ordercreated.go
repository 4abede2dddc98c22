package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront/internal/order"
)

const (
	OrderCreatedQueue   = "order.created"
	OrderCreatedName    = "OrderCreated"
	OrderCreatedVersion = 1
	producerName        = "storefront"
)

type OrderCreatedItem struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID       string             `json:"orderId"`
	PaymentID     string             `json:"paymentId"`
	UserID        string             `json:"userId"`
	UserEmail     string             `json:"userEmail,omitempty"`
	Items         []OrderCreatedItem `json:"items"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	ShippingInfo  order.ShippingInfo `json:"shippingInfo"`
	PaymentStatus string             `json:"paymentStatus"`
	CreatedAt     time.Time          `json:"createdAt"`
}

type OrderCreatedEnvelope = Envelope[OrderCreatedPayload]

func NewOrderCreated(o order.Order) OrderCreatedEnvelope {
	p := OrderCreatedPayload{
		OrderID:       o.ID,
		PaymentID:     o.PaymentID,
		UserID:        o.UserID,
		UserEmail:     o.UserEmail,
		Items:         make([]OrderCreatedItem, 0, len(o.Items)),
		TotalAmount:   o.TotalAmount,
		ShippingInfo:  o.ShippingInfo,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	}
	for _, it := range o.Items {
		p.Items = append(p.Items, OrderCreatedItem{
			ProductID: it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	return OrderCreatedEnvelope{
		EventName:    OrderCreatedName,
		EventVersion: OrderCreatedVersion,
		EventID:      uuid.NewString(),
		Producer:     producerName,
		PartitionKey: o.UserID,
		OccurredAt:   time.Now().UTC(),
		Payload:      p,
	}
}
