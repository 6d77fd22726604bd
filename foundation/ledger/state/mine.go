package state

import (
	"context"
	"errors"
	"time"

	"github.com/coinlab/coinlab/foundation/ledger/database"
)

// MineNewBlock runs a complete mining operation synchronously: it verifies
// the pooled transactions, performs the proof of work search with a SYSTEM
// reward for the miner, appends the solved block to the chain and confirms
// the included transactions. It fails with ErrMiningInProgress while
// another operation is in flight. Cancelling the context aborts the search
// and leaves the pool and chain exactly as they were.
func (s *State) MineNewBlock(ctx context.Context, minerAddress string) (database.Block, error) {
	if err := s.beginMining(minerAddress); err != nil {
		return database.Block{}, err
	}

	block, err := s.mineAndAccept(ctx, minerAddress)
	s.finishMining(block, err)

	return block, err
}

// StartMining launches a mining operation on the worker goroutine and
// returns immediately. Progress and completion are polled via
// MiningStatus. A second start while one is in flight is rejected with
// ErrMiningInProgress rather than queued.
func (s *State) StartMining(minerAddress string) error {
	if err := s.beginMining(minerAddress); err != nil {
		return err
	}

	s.worker.signalStartMining(minerAddress)

	return nil
}

// CancelMining requests cancellation of the mining operation running on
// the worker. The request is a no-op when nothing is being mined.
func (s *State) CancelMining() {
	s.worker.signalCancelMining()
}

// =============================================================================

// mineAndAccept performs the mining work while the coordinator holds the
// mining state. Rejected transactions never reach the block; the block is
// appended before any lifecycle transition so a failed append leaves every
// transaction pending.
func (s *State) mineAndAccept(ctx context.Context, minerAddress string) (database.Block, error) {
	s.evHandler("state: mineAndAccept: MINING: started: miner[%s]", minerAddress)
	defer s.evHandler("state: mineAndAccept: MINING: completed")

	trans := s.mineableTransactions()
	difficulty := s.nextDifficulty()

	block, err := database.POW(ctx, minerAddress, difficulty, s.genesis.MiningReward, s.chain.LatestBlock(), trans, s.progressFunc(difficulty))
	if err != nil {
		return database.Block{}, err
	}

	if err := s.chain.Append(block, difficulty); err != nil {
		return database.Block{}, err
	}

	confirmed := s.ConfirmAllPending(block)

	s.evHandler("state: mineAndAccept: MINING: solved: block[%d] hash[%s] nonce[%d] confirmed[%d]",
		block.Header.Index, block.BlockHash, block.Header.Nonce, confirmed)

	return block, nil
}

// finishMining releases the coordinator and records the outcome of the
// operation for status polling.
func (s *State) finishMining(block database.Block, err error) {
	s.statusMu.Lock()
	// The progress observer only fires every fixed number of attempts, so
	// a quickly solved block would otherwise finish with zero elapsed time.
	s.status.ElapsedSeconds = time.Since(s.miningStart).Seconds()
	switch {
	case err == nil:
		s.status.Status = StatusCompleted
		s.status.ProgressPercent = 100
		s.status.Hash = block.BlockHash
		s.status.BlockIndex = int(block.Header.Index)
		s.status.TransactionCount = len(block.Trans)
	case errors.Is(err, database.ErrMiningCancelled):
		s.status.Status = StatusCancelled
	default:
		s.status.Status = StatusFailed
	}
	s.statusMu.Unlock()

	if err := s.coordinator.Event(context.Background(), "stop"); err != nil {
		s.evHandler("state: finishMining: ERROR: releasing coordinator: %s", err)
	}
}

// nextDifficulty recomputes the active difficulty from the recent block
// timestamps before a mining operation. The retarget rule is a pure
// function and the result is never mutated mid-mine.
func (s *State) nextDifficulty() uint {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.difficulty = database.AdjustDifficulty(s.difficulty, s.chain.Blocks(), s.genesis.TargetBlockTime)
	return s.difficulty
}
