package state

import (
	"time"

	"github.com/coinlab/coinlab/foundation/ledger/database"
)

// SubmitTransaction validates a transfer against the chain-derived balance,
// signs it via the wallet collaborator and admits it to the pool. A SYSTEM
// sender bypasses the wallet and balance checks. Validation failures are
// returned to the caller without touching the pool.
func (s *State) SubmitTransaction(sender string, recipient string, amount uint64) (database.Tx, error) {
	if !s.wallets.Resolve(recipient) {
		return database.Tx{}, ErrWalletNotFound
	}

	if sender != database.SystemAccount {
		if !s.wallets.Resolve(sender) {
			return database.Tx{}, ErrWalletNotFound
		}

		// Compare in uint space. Converting the amount to int64 would wrap
		// negative for amounts >= 2^63 and let a broke sender overdraw.
		balance := s.chain.BalanceOf(sender)
		if balance < 0 || uint64(balance) < amount {
			return database.Tx{}, ErrInsufficientFunds
		}
	}

	tx, err := database.NewTx(sender, recipient, amount, time.Now().UTC().Unix(), nil)
	if err != nil {
		return database.Tx{}, err
	}

	if sender != database.SystemAccount {
		sig, err := s.wallets.Sign(sender, tx.Payload())
		if err != nil {
			return database.Tx{}, err
		}
		tx.Signature = sig
	}

	if !s.mempool.Add(tx) {
		s.evHandler("state: SubmitTransaction: duplicate tx[%s] ignored", tx.ID)
		return tx, nil
	}
	s.recordHistory(tx)

	s.evHandler("state: SubmitTransaction: pooled tx[%s]: %s -> %s: %d", tx.ID, tx.Sender, tx.Recipient, tx.Amount)

	return tx, nil
}

// VerifyTransaction checks a transaction is fit for inclusion in a block.
// SYSTEM reward transactions are always valid. Everything else requires a
// signature that cryptographically verifies against the sender's wallet.
func (s *State) VerifyTransaction(tx database.Tx) bool {
	if tx.IsSystem() {
		return true
	}

	if len(tx.Signature) == 0 {
		return false
	}

	return s.wallets.Verify(tx.Sender, tx.Payload(), tx.Signature)
}

// ConfirmTransaction moves a single pooled transaction into its terminal
// state against the freshly appended block. A transaction that fails
// verification is marked rejected and stays in the pool; a verified one is
// removed, marked confirmed and stamped with the block index.
func (s *State) ConfirmTransaction(txID string, block database.Block) bool {
	tx, exists := s.mempool.Get(txID)
	if !exists {
		return false
	}

	if !s.VerifyTransaction(tx) {
		tx.Status = database.StatusRejected
		s.mempool.Update(tx)
		s.recordHistory(tx)

		s.evHandler("state: ConfirmTransaction: rejected tx[%s]: verification failed", txID)
		return false
	}

	s.mempool.Remove(txID)

	tx.Status = database.StatusConfirmed
	tx.BlockIndex = int(block.Header.Index)
	s.recordHistory(tx)

	s.evHandler("state: ConfirmTransaction: confirmed tx[%s] in block[%d]", txID, block.Header.Index)
	return true
}

// ConfirmAllPending confirms every transaction included in the freshly
// appended block. The block's SYSTEM reward transaction never passed
// through the pool and is confirmed straight into the history. Returns the
// number of confirmed transactions.
func (s *State) ConfirmAllPending(block database.Block) int {
	var confirmed int

	for _, tx := range block.Trans {
		if tx.IsSystem() {
			tx.Status = database.StatusConfirmed
			tx.BlockIndex = int(block.Header.Index)
			s.recordHistory(tx)
			confirmed++
			continue
		}

		if s.ConfirmTransaction(tx.ID, block) {
			confirmed++
		}
	}

	return confirmed
}

// mineableTransactions snapshots the pool and verifies every pending
// transaction. Failing transactions are marked rejected, a terminal state,
// and are excluded from mining. The valid remainder is returned in pool
// insertion order.
func (s *State) mineableTransactions() []database.Tx {
	var mineable []database.Tx

	for _, tx := range s.mempool.Copy() {
		if tx.Status != database.StatusPending {
			continue
		}

		if !s.VerifyTransaction(tx) {
			tx.Status = database.StatusRejected
			s.mempool.Update(tx)
			s.recordHistory(tx)

			s.evHandler("state: mineableTransactions: rejected tx[%s]: verification failed", tx.ID)
			continue
		}

		mineable = append(mineable, tx)
	}

	return mineable
}

// =============================================================================

// PendingTransactions returns a snapshot of the pool in insertion order.
func (s *State) PendingTransactions() []database.Tx {
	return s.mempool.Copy()
}

// Transaction looks up a transaction by ID, checking the pool first and
// then the historical map.
func (s *State) Transaction(txID string) (database.Tx, error) {
	if tx, exists := s.mempool.Get(txID); exists {
		return tx, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if tx, exists := s.history[txID]; exists {
		return tx, nil
	}

	return database.Tx{}, ErrTransactionNotFound
}

// TransactionHistory returns every transaction ever submitted in creation
// order, optionally filtered to those where the address is the sender or
// the recipient. An empty address returns everything.
func (s *State) TransactionHistory(address string) []database.Tx {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []database.Tx
	for _, id := range s.historyOrder {
		tx := s.history[id]
		if address == "" || tx.Sender == address || tx.Recipient == address {
			txs = append(txs, tx)
		}
	}

	return txs
}

// ReconcileStatuses scans the chain for every historical transaction still
// marked pending and, when a block contains its ID, marks it confirmed with
// that block's index. Matching is by transaction ID. Returns the number of
// transactions updated.
func (s *State) ReconcileStatuses() int {
	mined := make(map[string]int)
	for _, block := range s.chain.Blocks() {
		for _, tx := range block.Trans {
			mined[tx.ID] = int(block.Header.Index)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var updated int
	for id, tx := range s.history {
		if tx.Status != database.StatusPending {
			continue
		}

		index, exists := mined[id]
		if !exists {
			continue
		}

		tx.Status = database.StatusConfirmed
		tx.BlockIndex = index
		s.history[id] = tx
		s.mempool.Remove(id)
		updated++

		s.evHandler("state: ReconcileStatuses: confirmed tx[%s] in block[%d]", id, index)
	}

	return updated
}
