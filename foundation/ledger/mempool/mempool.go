// Package mempool maintains the pool of transactions waiting to be mined
// into a block. The pool performs no validation, that is the job of the
// lifecycle manager in the state package.
package mempool

import (
	"sync"

	"github.com/coinlab/coinlab/foundation/ledger/database"
)

// Pool is a cache of pending transactions keyed by transaction ID. A
// separate key slice preserves insertion order so snapshots iterate
// deterministically.
type Pool struct {
	mu    sync.RWMutex
	pool  map[string]database.Tx
	order []string
}

// New constructs an empty transaction pool.
func New() *Pool {
	return &Pool{
		pool: make(map[string]database.Tx),
	}
}

// Add inserts a transaction into the pool. It returns false and leaves the
// pool untouched when the transaction ID is already present, giving
// at-most-once admission per ID.
func (p *Pool) Add(tx database.Tx) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.pool[tx.ID]; exists {
		return false
	}

	p.pool[tx.ID] = tx
	p.order = append(p.order, tx.ID)

	return true
}

// Update replaces a transaction already present in the pool, keeping its
// insertion position. It returns false when the ID is unknown.
func (p *Pool) Update(tx database.Tx) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.pool[tx.ID]; !exists {
		return false
	}

	p.pool[tx.ID] = tx
	return true
}

// Get returns the transaction with the specified ID.
func (p *Pool) Get(txID string) (database.Tx, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tx, exists := p.pool[txID]
	return tx, exists
}

// Remove deletes the transaction from the pool and returns it.
func (p *Pool) Remove(txID string) (database.Tx, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tx, exists := p.pool[txID]
	if !exists {
		return database.Tx{}, false
	}

	delete(p.pool, txID)
	for i, id := range p.order {
		if id == txID {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}

	return tx, true
}

// Copy returns a snapshot of the pooled transactions in insertion order.
func (p *Pool) Copy() []database.Tx {
	p.mu.RLock()
	defer p.mu.RUnlock()

	txs := make([]database.Tx, 0, len(p.pool))
	for _, id := range p.order {
		txs = append(txs, p.pool[id])
	}

	return txs
}

// Truncate clears all the transactions from the pool.
func (p *Pool) Truncate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pool = make(map[string]database.Tx)
	p.order = nil
}

// Count returns the current number of transactions in the pool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.pool)
}
