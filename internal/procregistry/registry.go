// Package procregistry tracks the OS process ids of background tunnel
// processes spawned during a run, so they can be terminated in bulk when the
// run ends for any reason. A pid is registered the moment the process is
// spawned, before its readiness is known, so an interrupted readiness wait
// can never leak a forwarder.
package procregistry

import (
	"sync"
	"syscall"
	"time"

	"smokectl/pkg/logging"
)

const subsystem = "ProcRegistry"

// killFn is swapped out in tests so Cleanup can be exercised without
// signalling real processes.
var killFn = defaultKill

// defaultKill asks the process to terminate, then forces the issue if it is
// still around shortly after.
func defaultKill(pid int) error {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return err
	}
	// SIGTERM is usually enough for kubectl; give it a moment before SIGKILL.
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(pid, 0); err == nil {
		return syscall.Kill(pid, syscall.SIGKILL)
	}
	return nil
}

// Registry records the pids of live tunnel processes. The zero value is not
// usable; create one with New. All methods are safe for concurrent use,
// because the signal guard may drain the registry from a signal-handling
// goroutine while a check is mid-flight.
type Registry struct {
	mu   sync.Mutex
	pids []int
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register records pid for later cleanup. Duplicate registration is
// tolerated; Cleanup simply signals the pid more than once, and termination
// of an already-dead process is treated as success.
func (r *Registry) Register(pid int) {
	if pid <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pids = append(r.pids, pid)
	logging.Debug(subsystem, "Registered tunnel process %d (%d live)", pid, len(r.pids))
}

// Unregister removes pid from the registry without signalling it. Used when
// a tunnel has already been terminated by its owning manager.
func (r *Registry) Unregister(pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.pids[:0]
	for _, p := range r.pids {
		if p != pid {
			kept = append(kept, p)
		}
	}
	r.pids = kept
}

// Live returns the number of pids currently tracked.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pids)
}

// Cleanup terminates every tracked process and empties the registry.
// Termination failures (the process is already gone) are swallowed; Cleanup
// never returns an error and calling it on an already-drained registry is a
// no-op.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	pids := r.pids
	r.pids = nil
	r.mu.Unlock()

	for _, pid := range pids {
		if err := killFn(pid); err != nil {
			// Already exited, or never ours to signal. Either way it is gone.
			logging.Debug(subsystem, "Ignoring kill error for pid %d: %v", pid, err)
			continue
		}
		logging.Debug(subsystem, "Terminated tunnel process %d", pid)
	}
}
