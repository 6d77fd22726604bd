package database

import (
	"encoding/hex"
	"math"

	"github.com/coinlab/coinlab/foundation/ledger/signature"
)

// SystemAccount is the sender recorded on mining reward transactions. It is
// exempt from signature and balance checks and is never debited.
const SystemAccount = "SYSTEM"

// NoBlock is the block index of a transaction that has not been mined.
const NoBlock = -1

// Set of statuses a transaction moves through. Pending is the initial
// state, confirmed and rejected are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
)

// Tx represents a value transfer between two addresses. The ID is derived
// from the transfer fields and is immutable once computed. Only the Status
// and BlockIndex fields change after construction.
type Tx struct {
	ID         string
	Sender     string
	Recipient  string
	Amount     uint64
	Timestamp  int64
	Signature  []byte
	Status     string
	BlockIndex int
}

// NewTx constructs a transaction and computes its identity. Amounts are
// capped at MaxInt64 so they always fold into the signed balance table
// without wrapping.
func NewTx(sender string, recipient string, amount uint64, timestamp int64, sig []byte) (Tx, error) {
	if amount == 0 || amount > math.MaxInt64 {
		return Tx{}, ErrInvalidAmount
	}

	tx := Tx{
		Sender:     sender,
		Recipient:  recipient,
		Amount:     amount,
		Timestamp:  timestamp,
		Signature:  sig,
		Status:     StatusPending,
		BlockIndex: NoBlock,
	}
	tx.ID = signature.Hash(tx.Payload())

	return tx, nil
}

// Payload returns the canonical value map that identifies the transaction.
// Identical transfer fields always produce identical payloads, so the hash
// of this map is deterministic. This is also the value wallets sign.
func (tx Tx) Payload() map[string]any {
	return map[string]any{
		"sender":    tx.Sender,
		"recipient": tx.Recipient,
		"amount":    tx.Amount,
		"timestamp": tx.Timestamp,
	}
}

// content returns the canonical value map a transaction contributes to the
// hash of the block containing it. Unlike Payload it covers the signature,
// so tampering with any recorded field breaks the block hash.
func (tx Tx) content() map[string]any {
	c := tx.Payload()
	c["signature"] = hex.EncodeToString(tx.Signature)
	return c
}

// IsSystem reports whether this is a reward transaction minted by mining.
func (tx Tx) IsSystem() bool {
	return tx.Sender == SystemAccount
}

// =============================================================================

// TxRecord is the serialized form of a transaction, used by the web layer
// and for pool/history persistence.
type TxRecord struct {
	ID         string `json:"transaction_id"`
	Sender     string `json:"sender"`
	Recipient  string `json:"recipient"`
	Amount     uint64 `json:"amount"`
	Timestamp  int64  `json:"timestamp"`
	Signature  []byte `json:"signature,omitempty"`
	Status     string `json:"status"`
	BlockIndex *int   `json:"block_index,omitempty"`
}

// NewTxRecord constructs the serialized form of a transaction.
func NewTxRecord(tx Tx) TxRecord {
	rec := TxRecord{
		ID:        tx.ID,
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		Timestamp: tx.Timestamp,
		Signature: tx.Signature,
		Status:    tx.Status,
	}

	if tx.BlockIndex != NoBlock {
		idx := tx.BlockIndex
		rec.BlockIndex = &idx
	}

	return rec
}

// ToTx converts a record back into a transaction, preserving every field
// including the original identity and status.
func ToTx(rec TxRecord) Tx {
	tx := Tx{
		ID:         rec.ID,
		Sender:     rec.Sender,
		Recipient:  rec.Recipient,
		Amount:     rec.Amount,
		Timestamp:  rec.Timestamp,
		Signature:  rec.Signature,
		Status:     rec.Status,
		BlockIndex: NoBlock,
	}

	if rec.BlockIndex != nil {
		tx.BlockIndex = *rec.BlockIndex
	}

	return tx
}
