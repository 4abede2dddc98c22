package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store is the cart of one session bound to its durable storage. Every
// mutation is written through before it returns; a failed write leaves the
// in-memory cart as it was.
type Store struct {
	mu      sync.Mutex
	session string
	cart    *Cart
	// stale is set while the durable cart could not be read. Mutations
	// retry the read first so they never overwrite data they did not see.
	stale   bool
	storage Storage
	log     *zap.Logger
}

// Load restores the session's cart. Missing or unreadable data yields an
// empty cart.
func Load(ctx context.Context, storage Storage, session string, log *zap.Logger) *Store {
	s := &Store{session: session, cart: &Cart{}, storage: storage, log: log}
	if err := s.load(ctx); err != nil {
		log.Warn("cart load failed, starting empty", zap.String("session", session), zap.Error(err))
		s.stale = true
	}
	return s
}

// load reads the durable cart. Only storage errors are returned; a missing or
// malformed record becomes an empty cart.
func (s *Store) load(ctx context.Context) error {
	raw, err := s.storage.Load(ctx, s.session)
	switch {
	case errors.Is(err, ErrNotStored):
		s.cart = &Cart{}
		return nil
	case err != nil:
		return err
	}

	var restored Cart
	if err := json.Unmarshal(raw, &restored); err != nil {
		s.log.Warn("stored cart is malformed, starting empty", zap.String("session", s.session), zap.Error(err))
		s.cart = &Cart{}
		return nil
	}
	s.cart = &restored
	return nil
}

// Refresh retries the durable read of a store whose first load failed.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Store) refreshLocked(ctx context.Context) error {
	if !s.stale {
		return nil
	}
	if err := s.load(ctx); err != nil {
		return err
	}
	s.stale = false
	return nil
}

func (s *Store) Stale() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stale
}

// mutate applies fn to a copy and commits it only once the copy is saved.
func (s *Store) mutate(ctx context.Context, fn func(c *Cart) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(ctx); err != nil {
		return s.cart.Snapshot(), fmt.Errorf("load cart: %w", err)
	}
	next := New(s.cart.Snapshot()...)
	if err := fn(next); err != nil {
		return s.cart.Snapshot(), err
	}
	raw, err := json.Marshal(next)
	if err != nil {
		return s.cart.Snapshot(), fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Save(ctx, s.session, raw); err != nil {
		return s.cart.Snapshot(), fmt.Errorf("persist cart: %w", err)
	}
	s.cart = next
	return next.Snapshot(), nil
}

func (s *Store) Add(ctx context.Context, item Item) (Snapshot, error) {
	return s.mutate(ctx, func(c *Cart) error { return c.Add(item) })
}

func (s *Store) Remove(ctx context.Context, id string) (Snapshot, error) {
	return s.mutate(ctx, func(c *Cart) error {
		c.Remove(id)
		return nil
	})
}

func (s *Store) SetQuantity(ctx context.Context, id string, quantity int) (Snapshot, error) {
	return s.mutate(ctx, func(c *Cart) error {
		c.SetQuantity(id, quantity)
		return nil
	})
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, func(c *Cart) error {
		c.Clear()
		return nil
	})
	return err
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Snapshot()
}

func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}
