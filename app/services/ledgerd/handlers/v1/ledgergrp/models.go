package ledgergrp

import "github.com/coinlab/coinlab/foundation/ledger/database"

type submitTx struct {
	From   string `json:"from" validate:"required"`
	To     string `json:"to" validate:"required"`
	Amount uint64 `json:"amount" validate:"required,gt=0"`
}

type startMining struct {
	Miner string `json:"miner" validate:"required"`
}

type block struct {
	Index        uint64              `json:"index"`
	Timestamp    int64               `json:"timestamp"`
	PreviousHash string              `json:"previous_hash"`
	Nonce        uint64              `json:"nonce"`
	Hash         string              `json:"hash"`
	Transactions []database.TxRecord `json:"transactions"`
}

func toBlock(b database.Block) block {
	trans := make([]database.TxRecord, len(b.Trans))
	for i, tx := range b.Trans {
		trans[i] = database.NewTxRecord(tx)
	}

	return block{
		Index:        b.Header.Index,
		Timestamp:    b.Header.Timestamp,
		PreviousHash: b.Header.PrevBlockHash,
		Nonce:        b.Header.Nonce,
		Hash:         b.BlockHash,
		Transactions: trans,
	}
}

func toTxRecords(txs []database.Tx) []database.TxRecord {
	records := make([]database.TxRecord, len(txs))
	for i, tx := range txs {
		records[i] = database.NewTxRecord(tx)
	}
	return records
}
