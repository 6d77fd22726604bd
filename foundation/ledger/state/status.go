package state

import (
	"math"
	"time"

	"github.com/coinlab/coinlab/foundation/ledger/database"
)

// Set of statuses a mining operation reports while being polled. Completed,
// cancelled and failed describe the most recent operation and remain
// visible until the next one starts.
const (
	StatusIdle      = "idle"
	StatusMining    = "mining"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// MiningStatus is the record the query layer polls while a mining
// operation is underway.
type MiningStatus struct {
	Status           string  `json:"status"`
	ProgressPercent  int     `json:"progress_percent"`
	BlockIndex       int     `json:"block_index"`
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	Hash             string  `json:"hash,omitempty"`
	TransactionCount int     `json:"transaction_count"`
}

// MiningStatus returns a copy of the current mining status.
func (s *State) MiningStatus() MiningStatus {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	return s.status
}

// progressFunc returns the observer the proof of work search notifies every
// fixed number of attempts. Progress is estimated against the expected
// number of attempts for the difficulty and capped below 100 until the
// block is actually solved.
func (s *State) progressFunc(difficulty uint) database.ProgressFunc {
	expected := math.Pow(16, float64(difficulty))

	return func(nonce uint64, elapsed time.Duration) {
		pct := int(float64(nonce) / expected * 100)
		if pct > 99 {
			pct = 99
		}

		s.statusMu.Lock()
		defer s.statusMu.Unlock()

		s.status.ProgressPercent = pct
		s.status.ElapsedSeconds = elapsed.Seconds()
	}
}
