// Package ledgergrp maintains the group of handlers exposing the ledger
// state to the dashboard's polling endpoints.
package ledgergrp

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/coinlab/coinlab/business/web/errs"
	v1 "github.com/coinlab/coinlab/business/web/v1"
	"github.com/coinlab/coinlab/foundation/events"
	"github.com/coinlab/coinlab/foundation/ledger/database"
	"github.com/coinlab/coinlab/foundation/ledger/state"
	"github.com/coinlab/coinlab/foundation/ledger/wallet"
	"github.com/dimfeld/httptreemux/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Wallets *wallet.Store
	WS      websocket.Upgrader
	Evts    *events.Hub
}

// CreateWallet generates a new wallet and returns its address.
func (h Handlers) CreateWallet(w http.ResponseWriter, r *http.Request) {
	wlt, err := h.Wallets.Create()
	if err != nil {
		v1.RespondError(w, err)
		return
	}

	h.Log.Infow("wallet created", "address", wlt.Address)

	resp := struct {
		Address string `json:"address"`
	}{
		Address: wlt.Address,
	}
	v1.Respond(w, http.StatusCreated, resp)
}

// ResolveWallet reports whether an address belongs to a known wallet.
func (h Handlers) ResolveWallet(w http.ResponseWriter, r *http.Request) {
	address := httptreemux.ContextParams(r.Context())["address"]

	if !h.Wallets.Resolve(address) {
		v1.RespondError(w, errs.NewTrusted(wallet.ErrNotFound, http.StatusNotFound))
		return
	}

	resp := struct {
		Address string `json:"address"`
	}{
		Address: address,
	}
	v1.Respond(w, http.StatusOK, resp)
}

// SubmitTransaction admits a new transaction to the pool.
func (h Handlers) SubmitTransaction(w http.ResponseWriter, r *http.Request) {
	var req submitTx
	if err := v1.Decode(r, &req); err != nil {
		v1.RespondError(w, err)
		return
	}

	tx, err := h.State.SubmitTransaction(req.From, req.To, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrWalletNotFound):
			v1.RespondError(w, errs.NewTrusted(err, http.StatusNotFound))
		case errors.Is(err, state.ErrInsufficientFunds), errors.Is(err, database.ErrInvalidAmount):
			v1.RespondError(w, errs.NewTrusted(err, http.StatusBadRequest))
		default:
			v1.RespondError(w, err)
		}
		return
	}

	v1.Respond(w, http.StatusCreated, database.NewTxRecord(tx))
}

// Mempool returns the set of transactions waiting to be mined.
func (h Handlers) Mempool(w http.ResponseWriter, r *http.Request) {
	v1.Respond(w, http.StatusOK, toTxRecords(h.State.PendingTransactions()))
}

// Transaction returns a single transaction from the pool or the history.
func (h Handlers) Transaction(w http.ResponseWriter, r *http.Request) {
	txID := httptreemux.ContextParams(r.Context())["id"]

	tx, err := h.State.Transaction(txID)
	if err != nil {
		v1.RespondError(w, errs.NewTrusted(err, http.StatusNotFound))
		return
	}

	v1.Respond(w, http.StatusOK, database.NewTxRecord(tx))
}

// History returns every transaction ever submitted, optionally filtered by
// address.
func (h Handlers) History(w http.ResponseWriter, r *http.Request) {
	address := httptreemux.ContextParams(r.Context())["address"]

	v1.Respond(w, http.StatusOK, toTxRecords(h.State.TransactionHistory(address)))
}

// StartMining launches an asynchronous mining operation.
func (h Handlers) StartMining(w http.ResponseWriter, r *http.Request) {
	var req startMining
	if err := v1.Decode(r, &req); err != nil {
		v1.RespondError(w, err)
		return
	}

	if err := h.State.StartMining(req.Miner); err != nil {
		switch {
		case errors.Is(err, state.ErrMiningInProgress):
			v1.RespondError(w, errs.NewTrusted(err, http.StatusConflict))
		case errors.Is(err, state.ErrWalletNotFound):
			v1.RespondError(w, errs.NewTrusted(err, http.StatusNotFound))
		default:
			v1.RespondError(w, err)
		}
		return
	}

	v1.Respond(w, http.StatusAccepted, h.State.MiningStatus())
}

// CancelMining requests cancellation of the in-flight mining operation.
func (h Handlers) CancelMining(w http.ResponseWriter, r *http.Request) {
	h.State.CancelMining()
	v1.Respond(w, http.StatusOK, h.State.MiningStatus())
}

// MiningStatus returns the progress record of the current or most recent
// mining operation.
func (h Handlers) MiningStatus(w http.ResponseWriter, r *http.Request) {
	v1.Respond(w, http.StatusOK, h.State.MiningStatus())
}

// Chain returns the full block sequence.
func (h Handlers) Chain(w http.ResponseWriter, r *http.Request) {
	blocks := h.State.QueryBlocks()

	models := make([]block, len(blocks))
	for i, b := range blocks {
		models[i] = toBlock(b)
	}

	v1.Respond(w, http.StatusOK, models)
}

// Block returns the block stored at the specified index.
func (h Handlers) Block(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.ParseUint(httptreemux.ContextParams(r.Context())["index"], 10, 64)
	if err != nil {
		v1.RespondError(w, errs.NewTrusted(err, http.StatusBadRequest))
		return
	}

	b, err := h.State.QueryBlock(index)
	if err != nil {
		v1.RespondError(w, errs.NewTrusted(err, http.StatusNotFound))
		return
	}

	v1.Respond(w, http.StatusOK, toBlock(b))
}

// Validate re-checks the hash linkage of the whole chain.
func (h Handlers) Validate(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Valid  bool `json:"valid"`
		Height int  `json:"height"`
	}{
		Valid:  h.State.IsChainValid(),
		Height: h.State.Height(),
	}
	v1.Respond(w, http.StatusOK, resp)
}

// Balance returns the chain-derived balance of an address.
func (h Handlers) Balance(w http.ResponseWriter, r *http.Request) {
	address := httptreemux.ContextParams(r.Context())["address"]

	resp := struct {
		Address string `json:"address"`
		Balance int64  `json:"balance"`
	}{
		Address: address,
		Balance: h.State.QueryBalance(address),
	}
	v1.Respond(w, http.StatusOK, resp)
}

// Events upgrades to a websocket and streams ledger events to the client.
func (h Handlers) Events(w http.ResponseWriter, r *http.Request) {
	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		v1.RespondError(w, err)
		return
	}
	defer c.Close()

	id := uuid.NewString()
	ch := h.Evts.Subscribe(id)
	defer h.Evts.Unsubscribe(id)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, open := <-ch:
			if !open {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}
