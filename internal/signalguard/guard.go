// Package signalguard ties the lifetime of background tunnel processes to
// the lifetime of the smokectl process itself. Once installed, a guard
// guarantees the process registry is drained exactly once before the process
// terminates, whether the run returns normally, is interrupted with SIGINT,
// or receives SIGTERM, and it never alters the run's true exit status.
package signalguard

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"smokectl/internal/procregistry"
	"smokectl/pkg/logging"
)

const subsystem = "SignalGuard"

// exitFn is swapped out in tests so guard paths can be exercised without
// terminating the test binary.
var exitFn = os.Exit

// Guard owns the cleanup of a run's process registry. Create one with
// Install at run start, before any tunnel is opened.
type Guard struct {
	registry *procregistry.Registry
	sigCh    chan os.Signal
	drain    sync.Once
}

// Install registers handlers for SIGINT and SIGTERM and returns a guard that
// drains registry before the process exits. Installation failure is fatal to
// the caller: with no guard in place, no tunnel may be opened.
func Install(registry *procregistry.Registry) (*Guard, error) {
	if registry == nil {
		return nil, fmt.Errorf("signalguard: nil process registry")
	}

	g := &Guard{
		registry: registry,
		sigCh:    make(chan os.Signal, 1),
	}
	signal.Notify(g.sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig, ok := <-g.sigCh
		if !ok {
			return
		}
		logging.Info(subsystem, "Received %s, draining tunnel processes before exit", sig)
		g.drainOnce()
		// Conventional shell exit status for death-by-signal.
		code := 130
		if sig == syscall.SIGTERM {
			code = 143
		}
		exitFn(code)
	}()

	return g, nil
}

// drainOnce runs registry cleanup at most once for the guard's lifetime,
// regardless of which exit path gets there first.
func (g *Guard) drainOnce() {
	g.drain.Do(func() {
		g.registry.Cleanup()
	})
}

// Exit drains the registry and terminates the process with code. This is the
// normal-completion path; the signal-handling goroutine covers the others.
func (g *Guard) Exit(code int) {
	g.Release()
	exitFn(code)
}

// Release drains the registry and detaches the signal handlers without
// exiting. Callers that do not own process termination (tests, library use)
// release the guard instead of calling Exit.
func (g *Guard) Release() {
	signal.Stop(g.sigCh)
	g.drainOnce()
}
