package state

import (
	"context"
	"sync"
)

// worker runs mining operations on a dedicated goroutine so the submission
// and query paths stay responsive while a mine is underway.
type worker struct {
	state        *State
	wg           sync.WaitGroup
	shut         chan struct{}
	startMining  chan string
	cancelMining chan struct{}
	evHandler    EventHandler
}

// runWorker constructs the worker and registers it with the state. The
// start channel is buffered for one operation; the coordinator guarantees
// at most one is ever outstanding.
func runWorker(state *State, evHandler EventHandler) {
	state.worker = &worker{
		state:        state,
		shut:         make(chan struct{}),
		startMining:  make(chan string, 1),
		cancelMining: make(chan struct{}, 1),
		evHandler:    evHandler,
	}

	// Don't return until the mining goroutine is up and running.
	hasStarted := make(chan bool)

	state.worker.wg.Add(1)
	go func() {
		defer state.worker.wg.Done()
		hasStarted <- true
		state.worker.miningOperations()
	}()

	<-hasStarted
}

// shutdown cancels any in-flight mining operation and terminates the
// mining goroutine.
func (w *worker) shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.signalCancelMining()
	close(w.shut)
	w.wg.Wait()
}

// =============================================================================

// miningOperations waits for mining requests until shutdown.
func (w *worker) miningOperations() {
	w.evHandler("worker: miningOperations: G started")
	defer w.evHandler("worker: miningOperations: G completed")

	for {
		select {
		case minerAddress := <-w.startMining:
			w.runMiningOperation(minerAddress)
		case <-w.shut:
			w.evHandler("worker: miningOperations: received shut signal")
			return
		}
	}
}

// signalStartMining hands a mining operation to the worker goroutine.
func (w *worker) signalStartMining(minerAddress string) {
	select {
	case w.startMining <- minerAddress:
	default:
	}
	w.evHandler("worker: signalStartMining: mining signaled")
}

// signalCancelMining signals the goroutine executing runMiningOperation to
// stop between nonce attempts. If nothing is mining the signal is dropped
// when the next operation drains the channel.
func (w *worker) signalCancelMining() {
	select {
	case w.cancelMining <- struct{}{}:
	default:
	}
	w.evHandler("worker: signalCancelMining: cancel mining signaled")
}

// runMiningOperation performs one complete mining operation and records
// its outcome on the state.
func (w *worker) runMiningOperation(minerAddress string) {
	w.evHandler("worker: runMiningOperation: MINING: started")
	defer w.evHandler("worker: runMiningOperation: MINING: completed")

	// Drain any stale cancel request before starting.
	select {
	case <-w.cancelMining:
		w.evHandler("worker: runMiningOperation: MINING: drained cancel channel")
	default:
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Can't return from this function until these G's are complete.
	var wg sync.WaitGroup
	wg.Add(2)

	// This G exists to cancel the mining operation.
	go func() {
		defer wg.Done()

		select {
		case <-w.cancelMining:
			w.evHandler("worker: runMiningOperation: MINING: cancel mining requested")
			cancel()
		case <-w.shut:
			cancel()
		case <-ctx.Done():
		}
	}()

	// This G is performing the mining.
	go func() {
		defer func() {
			cancel()
			wg.Done()
		}()

		block, err := w.state.mineAndAccept(ctx, minerAddress)
		w.state.finishMining(block, err)

		if err != nil {
			w.evHandler("worker: runMiningOperation: MINING: outcome: %s", err)
			return
		}

		w.evHandler("worker: runMiningOperation: MINING: block[%d] mined", block.Header.Index)
	}()

	wg.Wait()
}
