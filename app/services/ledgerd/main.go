package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/coinlab/coinlab/app/services/ledgerd/handlers"
	"github.com/coinlab/coinlab/foundation/events"
	"github.com/coinlab/coinlab/foundation/ledger/genesis"
	"github.com/coinlab/coinlab/foundation/ledger/state"
	"github.com/coinlab/coinlab/foundation/ledger/wallet"
	"github.com/coinlab/coinlab/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags.
var build = "develop"

func main() {
	log, err := logger.New("LEDGERD")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:10s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			APIHost         string        `conf:"default:0.0.0.0:8080"`
		}
		Ledger struct {
			GenesisPath string `conf:"default:"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "didactic cryptocurrency ledger",
		},
	}

	const prefix = "LEDGERD"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	// =========================================================================
	// Ledger Support

	gen := genesis.Default()
	if cfg.Ledger.GenesisPath != "" {
		gen, err = genesis.Load(cfg.Ledger.GenesisPath)
		if err != nil {
			return fmt.Errorf("loading genesis: %w", err)
		}
	}

	// Wallets are created on demand through the API. The store is the
	// collaborator the ledger consumes for signing and verification.
	wallets := wallet.NewStore()

	// The ledger packages accept a function of this signature to allow the
	// application to log. These raw messages are also sent to any websocket
	// client connected through the events hub.
	evts := events.NewHub()
	defer evts.Shutdown()

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s)
		evts.Publish(s)
	}

	st, err := state.New(state.Config{
		Genesis:   gen,
		Wallets:   wallets,
		EvHandler: ev,
	})
	if err != nil {
		return fmt.Errorf("constructing state: %w", err)
	}
	defer st.Shutdown()

	// =========================================================================
	// Service Start/Stop Support

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	mux := handlers.NewMux(handlers.MuxConfig{
		Log:     log,
		State:   st,
		Wallets: wallets,
		Evts:    evts,
	})

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      mux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Infow("startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
