package order

import (
	"context"
	"errors"
)

const defaultHistoryLimit = 50

// Service answers order history queries for the owning user.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit int) ([]Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// Get hides orders owned by someone else behind ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, id string) (Order, error) {
	if userID == "" {
		return Order{}, ErrNotAuthenticated
	}
	o, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}

// GetByPaymentID also matches documents that stored the payment id under
// the legacy field name.
func (s *Service) GetByPaymentID(ctx context.Context, userID, paymentID string) (Order, error) {
	if userID == "" {
		return Order{}, ErrNotAuthenticated
	}
	o, err := s.repo.FindByField(ctx, FieldPaymentID, paymentID)
	if errors.Is(err, ErrNotFound) {
		o, err = s.repo.FindByField(ctx, legacyFieldPaymentID, paymentID)
	}
	if err != nil {
		return Order{}, err
	}
	if o.UserID != userID {
		return Order{}, ErrNotFound
	}
	return o, nil
}
