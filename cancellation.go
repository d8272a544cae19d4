package gsmiq

import (
	"log"
	"os"
	"os/signal"
	"sync/atomic"
)

// exitRequested is the process-wide cancellation flag every Source's Fill
// loop re-checks. The reference implementation sets a volatile
// sig_atomic_t from inside an actual signal handler — the only
// async-signal-safe operations available to C are write(2) and assignment
// to such a flag. Go's signal package already does that work for us: the
// runtime's own handler is the only code that ever runs inside the real
// signal handler, and it redelivers the signal to WatchSignals' channel, so
// user code here never needs to be signal-safe itself.
var exitRequested atomic.Bool

// ExitRequested reports whether a watched signal (or RequestExit) has fired.
func ExitRequested() bool {
	return exitRequested.Load()
}

// RequestExit sets the process-wide exit flag directly, without waiting for
// a signal. Intended for tests and for callers embedding the pipeline in a
// larger program with its own shutdown sequencing.
func RequestExit() {
	exitRequested.Store(true)
}

// ResetExitRequested clears the flag. Exposed for tests that need a clean
// slate between cases; production callers should not need it.
func ResetExitRequested() {
	exitRequested.Store(false)
}

// WatchSignals starts a goroutine that sets the exit flag on the first
// delivery of any of sig, and calls os.Exit(1) on the second — preserving
// the "first signal asks nicely, second signal forces immediate exit"
// behavior of the original's sighandler, entirely outside of any actual
// signal handler context.
func WatchSignals(sig ...os.Signal) (stop func()) {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, sig...)

	done := make(chan struct{})
	go func() {
		first := false
		for {
			select {
			case <-ch:
				if first {
					os.Exit(1)
				}
				first = true
				log.Printf("gsmiq: exit requested, finishing in-flight work (press again to force)")
				exitRequested.Store(true)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}
