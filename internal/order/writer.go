package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher announces new orders. Publishing is best effort.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o Order) error
}

type SaveRequest struct {
	UserID        string
	UserEmail     string
	Items         []Item
	TotalAmount   decimal.Decimal
	ShippingInfo  ShippingInfo
	PaymentID     string
	PaymentStatus string
}

// Writer persists one order per successful payment.
type Writer struct {
	repo      Repository
	publisher Publisher
	now       func() time.Time
	log       *zap.Logger
}

// NewWriter accepts a nil publisher.
func NewWriter(repo Repository, publisher Publisher, log *zap.Logger) *Writer {
	return &Writer{repo: repo, publisher: publisher, now: time.Now, log: log}
}

// Save returns ErrNotAuthenticated, ErrEmptyOrder or a *PersistenceError.
func (w *Writer) Save(ctx context.Context, req SaveRequest) (Order, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Order{}, ErrNotAuthenticated
	}
	if len(req.Items) == 0 {
		return Order{}, ErrEmptyOrder
	}
	status := req.PaymentStatus
	if status == "" {
		status = StatusSucceeded
	}

	o := Order{
		PaymentID:     req.PaymentID,
		UserID:        req.UserID,
		UserEmail:     req.UserEmail,
		Items:         append([]Item(nil), req.Items...),
		TotalAmount:   req.TotalAmount,
		ShippingInfo:  req.ShippingInfo.Trimmed(),
		PaymentStatus: status,
		CreatedAt:     w.now().UTC().Truncate(time.Millisecond),
	}

	saved, err := w.repo.Insert(ctx, o)
	if err != nil {
		return Order{}, &PersistenceError{PaymentID: req.PaymentID, Err: err}
	}

	if w.publisher != nil {
		if err := w.publisher.PublishOrderCreated(ctx, saved); err != nil {
			w.log.Warn("order.created publish failed",
				zap.String("order_id", saved.ID),
				zap.String("payment_id", saved.PaymentID),
				zap.Error(err))
		}
	}
	return saved, nil
}
