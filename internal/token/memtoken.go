// Package token provides an in-memory fungible asset ledger implementing the
// vault's Token contract. It stands in for the external transfer mechanics in
// the service harness and in tests.
package token

import (
	"fmt"
	"sync"
)

// MemToken is a concurrency-safe balance map keyed by holder identifier.
type MemToken struct {
	mu       sync.Mutex
	address  string
	balances map[string]uint64
}

// New creates an empty ledger identified by address.
func New(address string) *MemToken {
	return &MemToken{
		address:  address,
		balances: make(map[string]uint64),
	}
}

// Address identifies the token.
func (t *MemToken) Address() string { return t.address }

// BalanceOf returns holder's balance.
func (t *MemToken) BalanceOf(holder string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.balances[holder]
}

// Transfer moves amount between holders, failing when from is short.
func (t *MemToken) Transfer(from, to string, amount uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[from] < amount {
		return fmt.Errorf("token %s: %s holds %d, needs %d", t.address, from, t.balances[from], amount)
	}
	t.balances[from] -= amount
	t.balances[to] += amount
	return nil
}

// Mint credits amount to holder out of thin air. Harness use only.
func (t *MemToken) Mint(holder string, amount uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.balances[holder] += amount
}

// Burn destroys up to amount of holder's balance and returns what was burned.
func (t *MemToken) Burn(holder string, amount uint64) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.balances[holder] < amount {
		amount = t.balances[holder]
	}
	t.balances[holder] -= amount
	return amount
}
