package catalog

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("product not found")

// IDGenerator mints product ids. Ids only need to be unique for the process lifetime.
type IDGenerator func() string

func UUIDGenerator() string { return uuid.NewString() }

// Store owns the ordered product collection. Creates append, updates keep
// position and removes delete in place; derived views never re-sort.
type Store struct {
	mu       sync.RWMutex
	products []Product
	newID    IDGenerator
	now      func() time.Time
	seeded   bool
}

type Option func(*Store)

func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) { s.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		newID: UUIDGenerator,
		now:   time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Seed replaces the whole collection. Calling it again is a reset, not a merge.
func (s *Store) Seed(initial []Product) {
	products := cloneAll(initial)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = products
	s.seeded = true
}

// Seeded reports whether Seed has run at least once.
func (s *Store) Seeded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.products)
}

func (s *Store) Featured() []Product {
	return s.where(func(p Product) bool { return p.Featured })
}

func (s *Store) NewArrivals() []Product {
	return s.where(func(p Product) bool { return p.NewArrival })
}

func (s *Store) where(keep func(Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *Store) Get(id string) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return Product{}, ErrNotFound
	}
	return s.products[i].Clone(), nil
}

// Add stores draft under a freshly minted id, discarding any id the caller set.
// CreatedAt is stamped only when the draft leaves it empty.
func (s *Store) Add(draft Product) Product {
	p := draft.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.mintID()
	if p.CreatedAt == "" {
		p.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	s.products = append(s.products, p)
	return p.Clone()
}

// Update replaces the product with the same id in place. CreatedAt is never changed.
func (s *Store) Update(p Product) error {
	next := p.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(p.ID)
	if i < 0 {
		return ErrNotFound
	}
	next.CreatedAt = s.products[i].CreatedAt
	s.products[i] = next
	return nil
}

func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.products = append(s.products[:i], s.products[i+1:]...)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.products)
}

func (s *Store) indexOf(id string) int {
	for i, p := range s.products {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// mintID retries on collision with a seeded or previously minted id.
// Must be called with mu held.
func (s *Store) mintID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}
