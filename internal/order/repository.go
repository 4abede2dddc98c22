package order

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Repository persists orders. Insert assigns the id.
type Repository interface {
	Insert(ctx context.Context, o Order) (Order, error)
	FindByID(ctx context.Context, id string) (Order, error)
	// FindByField returns the first order whose top-level field equals value.
	FindByField(ctx context.Context, field string, value interface{}) (Order, error)
	// ListByUser returns the user's orders, newest first. limit <= 0 means all.
	ListByUser(ctx context.Context, userID string, limit int) ([]Order, error)
}

// InMemoryRepository is used for tests and local scenarios.
type InMemoryRepository struct {
	mu     sync.RWMutex
	orders []Order
}

func NewInMemoryRepository(seed []Order) *InMemoryRepository {
	r := &InMemoryRepository{orders: make([]Order, 0, len(seed))}
	r.orders = append(r.orders, seed...)
	return r
}

func (r *InMemoryRepository) Insert(_ context.Context, o Order) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.NewString()
	o.Items = append([]Item(nil), o.Items...)
	r.orders = append(r.orders, o)
	return o, nil
}

func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) FindByField(_ context.Context, field string, value interface{}) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		var got interface{}
		switch field {
		case FieldPaymentID:
			got = o.PaymentID
		case FieldUserID:
			got = o.UserID
		case FieldPaymentStatus:
			got = o.PaymentStatus
		default:
			continue
		}
		if got == value {
			return o, nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Order, 0)
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
