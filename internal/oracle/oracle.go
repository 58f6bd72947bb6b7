// Package oracle supplies reference prices for trading pairs. Prices are
// fixed-point integers scaled by 10^18 and quoted per canonical pair; lookups
// accept either token ordering.
package oracle

import (
	"math/big"
	"sync"
)

type PriceOracle interface {
	// ReferencePrice returns the price for the pair, or false when the pair
	// has no configured reference.
	ReferencePrice(tokenA, tokenB string) (*big.Int, bool)
}

// Static is an in-memory reference price table fed by an admin or by the
// remote client's refresh loop.
type Static struct {
	mu     sync.RWMutex
	prices map[string]*big.Int
}

func NewStatic() *Static {
	return &Static{prices: make(map[string]*big.Int)}
}

func (s *Static) Set(tokenA, tokenB string, price *big.Int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[tokenA+"/"+tokenB] = new(big.Int).Set(price)
}

func (s *Static) ReferencePrice(tokenA, tokenB string) (*big.Int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.prices[tokenA+"/"+tokenB]; ok {
		return new(big.Int).Set(p), true
	}
	if p, ok := s.prices[tokenB+"/"+tokenA]; ok {
		return new(big.Int).Set(p), true
	}
	return nil, false
}
