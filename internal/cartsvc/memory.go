package cartsvc

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

// MemoryRepository keeps cart lines in process. Used for local runs and tests.
type MemoryRepository struct {
	mu     sync.Mutex
	nextID int64
	lines  map[int64]models.CartLine
	now    func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{lines: make(map[int64]models.CartLine), now: time.Now}
}

// Len counts lines across all owners.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.lines)
}

func (r *MemoryRepository) Lines(_ context.Context, owner string) ([]models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.CartLine
	for _, line := range r.lines {
		if line.Owner == owner {
			out = append(out, line)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Line(_ context.Context, id int64) (models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[id]
	if !ok {
		return models.CartLine{}, models.ErrCartItemNotFound
	}
	return line, nil
}

func (r *MemoryRepository) Insert(_ context.Context, owner string, productID int64, quantity int) (models.CartLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	line := models.CartLine{
		ID:        r.nextID,
		Owner:     owner,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   r.now().UTC(),
	}
	r.lines[line.ID] = line
	return line, nil
}

func (r *MemoryRepository) SetQuantity(_ context.Context, id int64, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, ok := r.lines[id]
	if !ok {
		return models.ErrCartItemNotFound
	}
	line.Quantity = quantity
	r.lines[id] = line
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.lines[id]; !ok {
		return models.ErrCartItemNotFound
	}
	delete(r.lines, id)
	return nil
}

func (r *MemoryRepository) DeleteOwner(_ context.Context, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, line := range r.lines {
		if line.Owner == owner {
			delete(r.lines, id)
		}
	}
	return nil
}

type MemoryCatalog struct {
	mu       sync.RWMutex
	products map[int64]models.Product
}

func NewMemoryCatalog(products ...models.Product) *MemoryCatalog {
	c := &MemoryCatalog{products: make(map[int64]models.Product)}
	c.Put(products...)
	return c
}

func (c *MemoryCatalog) Put(products ...models.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		p.SetTimestamps()
		c.products[p.ProductID] = p
	}
}

// SetStock overwrites the main warehouse level and recalculates the total.
func (c *MemoryCatalog) SetStock(productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return
	}
	p.Stock = models.Stock{WarehouseMain: quantity}
	p.CalculateTotalStock()
	c.products[productID] = p
}

func (c *MemoryCatalog) ProductByID(_ context.Context, productID int64) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.products[productID]
	if !ok {
		return nil, models.ErrProductNotFound
	}
	return &p, nil
}

type memoryBuyNow struct {
	session   models.BuyNowSession
	expiresAt time.Time
}

type MemoryBuyNowStore struct {
	mu       sync.Mutex
	sessions map[string]memoryBuyNow
	now      func() time.Time
}

func NewMemoryBuyNowStore() *MemoryBuyNowStore {
	return &MemoryBuyNowStore{sessions: make(map[string]memoryBuyNow), now: time.Now}
}

// Save also drops sessions that expired without ever being read.
func (s *MemoryBuyNowStore) Save(_ context.Context, session *models.BuyNowSession, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.sessions[session.BuyNowSessionID] = memoryBuyNow{session: *session, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryBuyNowStore) Get(_ context.Context, id string) (*models.BuyNowSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrBuyNowNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, models.ErrBuyNowNotFound
	}
	session := entry.session
	return &session, nil
}
