package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/wichananm65/storefront/internal/catalog"
	"go.uber.org/zap"
)

var ErrNoSession = errors.New("cart session is required")

// ProductLookup resolves the name, price and image of a product id.
type ProductLookup interface {
	GetByID(ctx context.Context, id string) (catalog.Product, error)
}

// Service hands out one Store per session. A session's store is loaded on
// first use and then reused so all mutations go through the same instance.
type Service struct {
	mu       sync.Mutex
	stores   map[string]*Store
	storage  Storage
	products ProductLookup
	log      *zap.Logger
}

func NewService(storage Storage, products ProductLookup, log *zap.Logger) *Service {
	return &Service{
		stores:   make(map[string]*Store),
		storage:  storage,
		products: products,
		log:      log,
	}
}

func (s *Service) Store(ctx context.Context, session string) (*Store, error) {
	if session == "" {
		return nil, ErrNoSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.stores[session]; ok {
		if err := st.Refresh(ctx); err != nil {
			s.log.Warn("cart still unreadable", zap.String("session", session), zap.Error(err))
		}
		return st, nil
	}
	st := Load(ctx, s.storage, session, s.log)
	s.stores[session] = st
	return st, nil
}

// AddProduct adds one unit of a catalog product.
func (s *Service) AddProduct(ctx context.Context, session, productID string) (Snapshot, error) {
	st, err := s.Store(ctx, session)
	if err != nil {
		return nil, err
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return st.Add(ctx, Item{ID: p.ID, Name: p.Name, Price: p.Price, ImageURL: p.ImageURL})
}

func (s *Service) Remove(ctx context.Context, session, productID string) (Snapshot, error) {
	st, err := s.Store(ctx, session)
	if err != nil {
		return nil, err
	}
	return st.Remove(ctx, productID)
}

func (s *Service) SetQuantity(ctx context.Context, session, productID string, quantity int) (Snapshot, error) {
	st, err := s.Store(ctx, session)
	if err != nil {
		return nil, err
	}
	return st.SetQuantity(ctx, productID, quantity)
}

func (s *Service) Snapshot(ctx context.Context, session string) (Snapshot, error) {
	st, err := s.Store(ctx, session)
	if err != nil {
		return nil, err
	}
	return st.Snapshot(), nil
}

func (s *Service) Clear(ctx context.Context, session string) error {
	st, err := s.Store(ctx, session)
	if err != nil {
		return err
	}
	return st.Clear(ctx)
}
