// Package ltp keeps per-symbol price points behind a small concurrent map.
// The engine holds two instances: one for last traded prices written by the
// matcher, one for the synthetic reference prices written by the price
// engine. The two loops share nothing else.
package ltp

import "sync"

// Store is a concurrent symbol to price map.
type Store struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{prices: make(map[string]float64)}
}

// Update records the price for the symbol. Empty symbols are ignored.
func (s *Store) Update(symbol string, price float64) {
	if symbol == "" {
		return
	}
	s.mu.Lock()
	s.prices[symbol] = price
	s.mu.Unlock()
}

// Get returns the symbol's price, if one has been recorded.
func (s *Store) Get(symbol string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prices[symbol]
	return p, ok
}

// Snapshot copies the full symbol to price map. Processors in one cycle all
// read the same snapshot, so matches within a cycle are not skewed by the
// LTP updates the cycle itself emits.
func (s *Store) Snapshot() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.prices))
	for sym, p := range s.prices {
		out[sym] = p
	}
	return out
}
