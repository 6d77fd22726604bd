package database

import (
	"context"
	"time"

	"github.com/coinlab/coinlab/foundation/ledger/signature"
)

// GenesisParentHash is the previous hash recorded on the genesis block.
const GenesisParentHash = "0"

// progressInterval is the number of nonce attempts between notifications
// to the progress observer.
const progressInterval = 1000

// ProgressFunc is called by the proof of work search so a UI can poll
// mining progress. It is a side effect, not part of the correctness
// contract.
type ProgressFunc func(nonce uint64, elapsed time.Duration)

// =============================================================================

// BlockHeader represents the common information required for each block.
type BlockHeader struct {
	Index         uint64 `json:"index"`
	Timestamp     int64  `json:"timestamp"`
	PrevBlockHash string `json:"previous_hash"`
	Nonce         uint64 `json:"nonce"`
}

// Block represents a group of transactions mined together. Once finalized
// by the proof of work search a block is immutable.
type Block struct {
	Header    BlockHeader
	Trans     []Tx
	BlockHash string
}

// GenesisBlock constructs the first block of a chain. The genesis block
// carries no transactions, a fixed nonce of zero and is exempt from the
// difficulty predicate.
func GenesisBlock(timestamp int64) Block {
	b := Block{
		Header: BlockHeader{
			Index:         0,
			Timestamp:     timestamp,
			PrevBlockHash: GenesisParentHash,
			Nonce:         0,
		},
	}
	b.BlockHash = b.Hash()

	return b
}

// Hash re-derives the unique hash for the block from its fields.
func (b Block) Hash() string {
	trans := make([]map[string]any, len(b.Trans))
	for i, tx := range b.Trans {
		trans[i] = tx.content()
	}

	return signature.Hash(map[string]any{
		"index":         b.Header.Index,
		"timestamp":     b.Header.Timestamp,
		"transactions":  trans,
		"previous_hash": b.Header.PrevBlockHash,
		"nonce":         b.Header.Nonce,
	})
}

// =============================================================================

// POW constructs the next block for the chain and performs the work to find
// a nonce that solves the proof of work puzzle. A SYSTEM reward transaction
// for the miner is prepended to the provided transactions, so every mined
// block carries at least one transaction.
//
// The search is an unbounded linear scan of the nonce space. A difficulty
// too high for the hash space never terminates; that is an accepted risk of
// this didactic design, cancellation via ctx is the only way out.
func POW(ctx context.Context, minerAddress string, difficulty uint, reward uint64, prevBlock Block, txs []Tx, progress ProgressFunc) (Block, error) {
	rewardTx, err := NewTx(SystemAccount, minerAddress, reward, time.Now().UTC().Unix(), nil)
	if err != nil {
		return Block{}, err
	}

	trans := make([]Tx, 0, len(txs)+1)
	trans = append(trans, rewardTx)
	trans = append(trans, txs...)

	nb := Block{
		Header: BlockHeader{
			Index:         prevBlock.Header.Index + 1,
			Timestamp:     time.Now().UTC().Unix(),
			PrevBlockHash: prevBlock.BlockHash,
			Nonce:         0,
		},
		Trans: trans,
	}

	if err := nb.performPOW(ctx, difficulty, progress); err != nil {
		return Block{}, err
	}

	return nb, nil
}

// performPOW increments the nonce until the block hash satisfies the
// difficulty. Pointer semantics are being used since a nonce is being
// discovered.
func (b *Block) performPOW(ctx context.Context, difficulty uint, progress ProgressFunc) error {
	start := time.Now()

	var attempts uint64
	for {
		attempts++
		if progress != nil && attempts%progressInterval == 0 {
			progress(b.Header.Nonce, time.Since(start))
		}

		// Cancellation is only honored between attempts so a finalized
		// block is never discarded mid-freeze.
		if ctx.Err() != nil {
			return ErrMiningCancelled
		}

		hash := b.Hash()
		if !isHashSolved(difficulty, hash) {
			b.Header.Nonce++
			continue
		}

		b.BlockHash = hash
		return nil
	}
}

// isHashSolved checks the hash complies with the proof of work rules. The
// hash must carry a difficulty number of leading zero hex digits.
func isHashSolved(difficulty uint, hash string) bool {
	if uint(len(hash)) < difficulty {
		return false
	}

	for _, digit := range hash[:difficulty] {
		if digit != '0' {
			return false
		}
	}

	return true
}
