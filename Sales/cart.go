package Sales

import (
	"sync"

	"CafePOS/Models"
)

// CartStore keeps one in-progress cart per login session.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]map[string]int)}
}

// Add increases the quantity of a product in the session's cart.
func (s *CartStore) Add(session, product string, qty int) (map[string]int, error) {
	if product == "" {
		return nil, Models.Invalidf("product name is required")
	}
	if qty <= 0 {
		return nil, Models.Invalidf("quantity must be positive")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[session]
	if !ok {
		cart = make(map[string]int)
		s.carts[session] = cart
	}
	cart[product] += qty
	return copyCart(cart), nil
}

// Set replaces the quantity of a product; zero removes it.
func (s *CartStore) Set(session, product string, qty int) (map[string]int, error) {
	if qty < 0 {
		return nil, Models.Invalidf("quantity cannot be negative")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[session]
	if !ok {
		cart = make(map[string]int)
		s.carts[session] = cart
	}
	if qty == 0 {
		delete(cart, product)
	} else {
		cart[product] = qty
	}
	return copyCart(cart), nil
}

func (s *CartStore) Remove(session, product string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.carts[session]
	delete(cart, product)
	return copyCart(cart)
}

func (s *CartStore) Get(session string) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.carts[session])
}

func (s *CartStore) Clear(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, session)
}

func copyCart(cart map[string]int) map[string]int {
	out := make(map[string]int, len(cart))
	for name, qty := range cart {
		out[name] = qty
	}
	return out
}
