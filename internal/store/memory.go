package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"product-catalog-manager/internal/domain"
)

// MemoryStore keeps products in process memory. Listing without sorting
// returns products in insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	m     map[string]domain.Product
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]domain.Product)}
}

func (s *MemoryStore) CreateProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	p := *product
	p.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[p.ID] = p
	s.order = append(s.order, p.ID)
	return &p, nil
}

func (s *MemoryStore) GetProductByID(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListProducts(_ context.Context, params ListProductsParams) ([]domain.Product, error) {
	s.mu.RLock()
	products := make([]domain.Product, 0, len(s.order))
	for _, id := range s.order {
		products = append(products, s.m[id])
	}
	s.mu.RUnlock()

	if params.SortByPrice {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	}
	return products, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, id string, patch domain.ProductPatch) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	patch.Apply(&p)
	s.m[id] = p
	return &p, nil
}

func (s *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return nil
	}
	delete(s.m, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
