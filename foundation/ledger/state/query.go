package state

import "github.com/coinlab/coinlab/foundation/ledger/database"

// QueryBalance returns the chain-derived balance of the address.
func (s *State) QueryBalance(address string) int64 {
	return s.chain.BalanceOf(address)
}

// QueryBlocks returns a copy of the full block sequence.
func (s *State) QueryBlocks() []database.Block {
	return s.chain.Blocks()
}

// QueryBlock returns the block stored at the specified index.
func (s *State) QueryBlock(index uint64) (database.Block, error) {
	return s.chain.GetBlock(index)
}

// LatestBlock returns the block at the chain tip.
func (s *State) LatestBlock() database.Block {
	return s.chain.LatestBlock()
}

// Height returns the current chain length.
func (s *State) Height() int {
	return s.chain.Height()
}

// IsChainValid re-validates the hash linkage of the whole chain.
func (s *State) IsChainValid() bool {
	return s.chain.IsValid()
}

// Difficulty returns the currently active difficulty.
func (s *State) Difficulty() uint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.difficulty
}

// QueryMempoolLength returns the current length of the pool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}
