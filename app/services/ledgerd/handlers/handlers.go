// Package handlers manages the different versions of the API.
package handlers

import (
	"net/http"

	v1 "github.com/coinlab/coinlab/app/services/ledgerd/handlers/v1"
	"github.com/coinlab/coinlab/business/web/mid"
	"github.com/coinlab/coinlab/foundation/events"
	"github.com/coinlab/coinlab/foundation/ledger/state"
	"github.com/coinlab/coinlab/foundation/ledger/wallet"
	"github.com/dimfeld/httptreemux/v5"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Log     *zap.SugaredLogger
	State   *state.State
	Wallets *wallet.Store
	Evts    *events.Hub
}

// NewMux constructs a http.Handler with all application routes defined and
// the common middleware applied.
func NewMux(cfg MuxConfig) http.Handler {
	mux := httptreemux.NewContextMux()

	v1.Routes(mux, v1.Config{
		Log:     cfg.Log,
		State:   cfg.State,
		Wallets: cfg.Wallets,
		Evts:    cfg.Evts,
	})

	return mid.Wrap(mux,
		mid.Logger(cfg.Log),
		mid.Panics(cfg.Log),
		mid.Cors("*"),
	)
}
