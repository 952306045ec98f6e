package signal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

var (
	mu           sync.Mutex
	handlers     []func()
	listening    bool
	shuttingDown bool

	requested = make(chan struct{}, 1)

	// InterruptHandlersDone is closed after all interrupt handlers ran.
	InterruptHandlersDone = make(chan struct{})
)

// listen starts the shutdown goroutine once. mu must be held.
func listen() {
	if listening {
		return
	}
	listening = true

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigs:
		case <-requested:
		}
		signal.Stop(sigs)

		mu.Lock()
		shuttingDown = true
		run := handlers
		handlers = nil
		mu.Unlock()

		// LIFO, so later resources close before the ones they depend on.
		for i := len(run) - 1; i >= 0; i-- {
			run[i]()
		}
		close(InterruptHandlersDone)
	}()
}

// AddInterruptHandler registers handler to run on SIGINT, SIGTERM or
// SimulateInterrupt. A handler added during shutdown runs right away.
func AddInterruptHandler(handler func()) {
	mu.Lock()
	if shuttingDown {
		mu.Unlock()
		handler()
		return
	}
	listen()
	handlers = append(handlers, handler)
	mu.Unlock()
}

// SimulateInterrupt starts the shutdown as if a signal was received.
func SimulateInterrupt() {
	mu.Lock()
	listen()
	mu.Unlock()

	select {
	case requested <- struct{}{}:
	default:
	}
}

// Context returns a context canceled once shutdown starts.
func Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	AddInterruptHandler(cancel)
	return ctx
}
