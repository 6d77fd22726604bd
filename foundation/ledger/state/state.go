// Package state is the core API for the ledger and implements the
// transaction lifecycle and mining coordination business rules. The web
// layer talks only to this package and to the chain's read-only queries.
package state

import (
	"context"
	"sync"
	"time"

	"github.com/coinlab/coinlab/foundation/ledger/database"
	"github.com/coinlab/coinlab/foundation/ledger/genesis"
	"github.com/coinlab/coinlab/foundation/ledger/mempool"
	"github.com/looplab/fsm"
)

// EventHandler defines a function that is called when events occur in the
// processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// Wallets represents the behavior required of the external wallet
// collaborator. The core consumes signing and verification as a capability
// and never touches key material.
type Wallets interface {
	Resolve(address string) bool
	Sign(address string, value any) ([]byte, error)
	Verify(address string, value any, sig []byte) bool
}

// Coordinator states guarding the single-writer mining invariant.
const (
	coordIdle   = "idle"
	coordMining = "mining"
)

// =============================================================================

// Config represents the configuration required to start the ledger state.
type Config struct {
	Genesis   genesis.Genesis
	Wallets   Wallets
	EvHandler EventHandler
}

// State manages the transaction lifecycle: pool admission, mining
// orchestration and status transitions. It holds non-owning references to
// the chain and the pool plus the historical map of every transaction that
// was ever submitted.
type State struct {
	genesis   genesis.Genesis
	wallets   Wallets
	evHandler EventHandler

	chain   *database.Chain
	mempool *mempool.Pool

	mu           sync.RWMutex
	history      map[string]database.Tx
	historyOrder []string
	difficulty   uint

	coordinator *fsm.FSM
	statusMu    sync.Mutex
	status      MiningStatus
	miningStart time.Time

	worker *worker
}

// New constructs the ledger state from a genesis configuration and starts
// the mining worker goroutine.
func New(cfg Config) (*State, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	s := State{
		genesis:    cfg.Genesis,
		wallets:    cfg.Wallets,
		evHandler:  ev,
		chain:      database.NewChain(cfg.Genesis),
		mempool:    mempool.New(),
		history:    make(map[string]database.Tx),
		difficulty: cfg.Genesis.Difficulty,
		status:     MiningStatus{Status: StatusIdle, BlockIndex: database.NoBlock},
	}

	// The coordinator enforces that exactly one mining operation is in
	// flight. A start event while mining fails instead of queueing.
	s.coordinator = fsm.NewFSM(
		coordIdle,
		fsm.Events{
			{Name: "start", Src: []string{coordIdle}, Dst: coordMining},
			{Name: "stop", Src: []string{coordMining}, Dst: coordIdle},
		},
		fsm.Callbacks{},
	)

	runWorker(&s, ev)

	return &s, nil
}

// Shutdown cancels any in-flight mining operation and stops the worker.
func (s *State) Shutdown() {
	s.worker.shutdown()
}

// Genesis returns a copy of the genesis configuration.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// =============================================================================

// recordHistory upserts the transaction into the historical map, keeping
// first-seen ordering for history queries.
func (s *State) recordHistory(tx database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.history[tx.ID]; !exists {
		s.historyOrder = append(s.historyOrder, tx.ID)
	}
	s.history[tx.ID] = tx
}

// beginMining transitions the coordinator into the mining state and
// initializes the status record for polling.
func (s *State) beginMining(minerAddress string) error {
	if !s.wallets.Resolve(minerAddress) {
		return ErrWalletNotFound
	}

	if err := s.coordinator.Event(context.Background(), "start"); err != nil {
		return ErrMiningInProgress
	}

	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.miningStart = time.Now()
	s.status = MiningStatus{
		Status:           StatusMining,
		BlockIndex:       int(s.chain.LatestBlock().Header.Index) + 1,
		TransactionCount: s.mempool.Count(),
	}

	return nil
}
