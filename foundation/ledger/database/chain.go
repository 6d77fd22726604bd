package database

import (
	"sync"

	"github.com/coinlab/coinlab/foundation/ledger/genesis"
)

// Chain owns the ordered, append-only sequence of blocks and the balance
// table derived from them. Appends are serialized; reads are safe
// concurrently with an in-flight mining operation.
type Chain struct {
	mu       sync.RWMutex
	genesis  genesis.Genesis
	blocks   []Block
	balances map[string]int64
}

// NewChain constructs a chain containing exactly the genesis block, with
// the balance table seeded from the genesis allocations.
func NewChain(gen genesis.Genesis) *Chain {
	balances := make(map[string]int64)
	for address, amount := range gen.Balances {
		balances[address] = int64(amount)
	}

	return &Chain{
		genesis:  gen,
		blocks:   []Block{GenesisBlock(gen.Date.Unix())},
		balances: balances,
	}
}

// Append validates the block against the current tip and the active
// difficulty and adds it to the chain. On any validation failure the chain
// is left unmodified. These failures indicate a mining bug or tampering.
func (c *Chain) Append(block Block, difficulty uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]

	if block.Header.PrevBlockHash != tip.BlockHash || block.Header.Index != tip.Header.Index+1 {
		return ErrInvalidLink
	}

	if !isHashSolved(difficulty, block.BlockHash) {
		return ErrInvalidProofOfWork
	}

	if block.Hash() != block.BlockHash {
		return ErrHashMismatch
	}

	c.blocks = append(c.blocks, block)
	c.applyBalances(block)

	return nil
}

// IsValid re-derives every block hash from the block fields and checks
// every previous hash linkage across the whole sequence. It is a tamper
// and corruption detector, returning false on the first break found.
func (c *Chain) IsValid() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i, block := range c.blocks {
		if block.Hash() != block.BlockHash {
			return false
		}

		if i == 0 {
			if block.Header.PrevBlockHash != GenesisParentHash {
				return false
			}
			continue
		}

		if block.Header.PrevBlockHash != c.blocks[i-1].BlockHash {
			return false
		}
	}

	return true
}

// BalanceOf returns the derived balance of the address: the sum of amounts
// received minus the sum of amounts sent across all mined blocks. The value
// is served from the incremental table maintained by Append and always
// matches a full rescan.
func (c *Chain) BalanceOf(address string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.balances[address]
}

// ScanBalance recomputes the balance of the address by walking every block.
// It is the slow reference path for BalanceOf.
func (c *Chain) ScanBalance(address string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	balance := int64(c.genesis.Balances[address])
	for _, block := range c.blocks {
		for _, tx := range block.Trans {
			if tx.Sender == address && !tx.IsSystem() {
				balance -= int64(tx.Amount)
			}
			if tx.Recipient == address {
				balance += int64(tx.Amount)
			}
		}
	}

	return balance
}

// LatestBlock returns the block at the chain tip.
func (c *Chain) LatestBlock() Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1]
}

// GetBlock returns the block stored at the specified index.
func (c *Chain) GetBlock(index uint64) (Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if index >= uint64(len(c.blocks)) {
		return Block{}, ErrBlockNotFound
	}

	return c.blocks[index], nil
}

// Blocks returns a copy of the block sequence.
func (c *Chain) Blocks() []Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]Block, len(c.blocks))
	copy(blocks, c.blocks)

	return blocks
}

// Height returns the number of blocks in the chain.
func (c *Chain) Height() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// applyBalances folds the transactions of a freshly appended block into the
// balance table. SYSTEM reward transactions only credit the recipient.
// Callers must hold the write lock.
func (c *Chain) applyBalances(block Block) {
	for _, tx := range block.Trans {
		if !tx.IsSystem() {
			c.balances[tx.Sender] -= int64(tx.Amount)
		}
		c.balances[tx.Recipient] += int64(tx.Amount)
	}
}
