// Package v1 binds the full set of version 1 routes.
package v1

import (
	"github.com/coinlab/coinlab/app/services/ledgerd/handlers/v1/ledgergrp"
	"github.com/coinlab/coinlab/foundation/events"
	"github.com/coinlab/coinlab/foundation/ledger/state"
	"github.com/coinlab/coinlab/foundation/ledger/wallet"
	"github.com/dimfeld/httptreemux/v5"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Wallets *wallet.Store
	Evts    *events.Hub
}

// Routes binds all the version 1 routes.
func Routes(mux *httptreemux.ContextMux, cfg Config) {
	lgr := ledgergrp.Handlers{
		Log:     cfg.Log,
		State:   cfg.State,
		Wallets: cfg.Wallets,
		Evts:    cfg.Evts,
	}

	g := mux.NewGroup("/v1")

	g.POST("/wallet", lgr.CreateWallet)
	g.GET("/wallet/:address", lgr.ResolveWallet)

	g.POST("/tx/submit", lgr.SubmitTransaction)
	g.GET("/tx/uncommitted/list", lgr.Mempool)
	g.GET("/tx/history", lgr.History)
	g.GET("/tx/history/:address", lgr.History)
	g.GET("/tx/:id", lgr.Transaction)

	g.POST("/mining/start", lgr.StartMining)
	g.POST("/mining/cancel", lgr.CancelMining)
	g.GET("/mining/status", lgr.MiningStatus)

	g.GET("/chain/list", lgr.Chain)
	g.GET("/chain/block/:index", lgr.Block)
	g.GET("/chain/validate", lgr.Validate)

	g.GET("/balances/:address", lgr.Balance)

	g.GET("/events", lgr.Events)
}
