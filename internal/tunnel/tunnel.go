// Package tunnel owns the full lifecycle of one ephemeral port-forward: it
// spawns a background `kubectl port-forward` process, waits under a bounded
// polling budget for the local port to come up, and tears the process down
// again. Spawned process ids are registered with the run's process registry
// before readiness is known, so an interrupted or timed-out wait never leaks
// a forwarder.
package tunnel

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"syscall"
	"time"

	"smokectl/internal/procregistry"
	"smokectl/internal/retry"
	"smokectl/pkg/logging"
)

const subsystem = "Tunnel"

const (
	// DefaultMaxWaitAttempts and DefaultPollInterval bound the readiness
	// wait: at most attempts * interval of waiting before the tunnel is
	// declared dead.
	DefaultMaxWaitAttempts = 10
	DefaultPollInterval    = 500 * time.Millisecond

	dialTimeout = 250 * time.Millisecond

	// Close waits for the local port to be released so a subsequent check
	// can reuse it, but only up to this budget. This is advisory: the OS
	// gives no hard guarantee about when the port comes free.
	releasePollInterval = 100 * time.Millisecond
	releasePollAttempts = 5
)

// spawnFn starts the forwarding process and returns its pid. Swapped out in
// tests.
var spawnFn = defaultSpawn

// terminateFn kills a forwarding process, tolerating one that is already
// gone. Swapped out in tests.
var terminateFn = defaultTerminate

// portBoundFn reports whether a local TCP port currently accepts
// connections. Swapped out in tests.
var portBoundFn = defaultPortBound

func defaultSpawn(kubeContext, namespace, service string, localPort, remotePort int) (int, error) {
	args := []string{"port-forward"}
	if kubeContext != "" {
		args = append(args, "--context", kubeContext)
	}
	if namespace != "" {
		args = append(args, "--namespace", namespace)
	}
	args = append(args, "--address", "127.0.0.1",
		"service/"+service, fmt.Sprintf("%d:%d", localPort, remotePort))

	cmd := exec.Command("kubectl", args...)
	if err := cmd.Start(); err != nil {
		return 0, err
	}

	// Reap the child when it exits so killed forwarders don't linger as
	// zombies for the rest of the run.
	go func() { _ = cmd.Wait() }()

	return cmd.Process.Pid, nil
}

func defaultTerminate(pid int) {
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil {
		return // already gone
	}
	time.Sleep(100 * time.Millisecond)
	if err := syscall.Kill(pid, 0); err == nil {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}

func defaultPortBound(port int) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), dialTimeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Options tune one Open call. Zero values fall back to the defaults above.
type Options struct {
	KubeContext     string
	MaxWaitAttempts int
	PollInterval    time.Duration

	// maxWaitAttemptsSet distinguishes "not provided" from an explicit 0,
	// which is a legitimate (always-timing-out) budget.
	maxWaitAttemptsSet bool
}

// WithMaxWaitAttempts sets an explicit readiness attempt budget, including 0.
func (o Options) WithMaxWaitAttempts(n int) Options {
	o.MaxWaitAttempts = n
	o.maxWaitAttemptsSet = true
	return o
}

func (o Options) attempts() int {
	if !o.maxWaitAttemptsSet && o.MaxWaitAttempts == 0 {
		return DefaultMaxWaitAttempts
	}
	return o.MaxWaitAttempts
}

func (o Options) interval() time.Duration {
	if o.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return o.PollInterval
}

// Manager opens and closes tunnels, recording every spawned process in the
// run's registry.
type Manager struct {
	registry *procregistry.Registry
}

// NewManager returns a Manager backed by registry.
func NewManager(registry *procregistry.Registry) *Manager {
	return &Manager{registry: registry}
}

// Open spawns a forwarder binding localPort to remotePort on
// service/namespace and waits for the local port to come up. The pid is
// registered before the wait starts. On timeout the process is killed and
// ErrTunnelTimeout is returned; on spawn failure ErrSpawnFailed is returned
// and nothing was registered. The returned handle is Ready and must be
// passed to Close by the caller.
func (m *Manager) Open(ctx context.Context, service, namespace string, localPort, remotePort int, opts Options) (*Handle, error) {
	handle := &Handle{
		LocalPort:  localPort,
		RemotePort: remotePort,
		Service:    service,
		Namespace:  namespace,
		status:     StatusSpawning,
	}

	logging.Info(subsystem, "Opening tunnel %d -> %s/%s:%d", localPort, namespace, service, remotePort)

	pid, err := spawnFn(opts.KubeContext, namespace, service, localPort, remotePort)
	if err != nil {
		handle.advance(StatusFailed)
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}
	handle.PID = pid
	m.registry.Register(pid)

	ready := retry.Poll(ctx, opts.attempts(), opts.interval(), func() bool {
		return portBoundFn(localPort)
	})
	if !ready {
		terminateFn(pid)
		m.registry.Unregister(pid)
		handle.advance(StatusFailed)
		return nil, fmt.Errorf("tunnel to %s/%s on port %d: %w", namespace, service, localPort, ErrTunnelTimeout)
	}

	handle.advance(StatusReady)
	logging.Debug(subsystem, "Tunnel to %s/%s ready on 127.0.0.1:%d (pid %d)", namespace, service, localPort, pid)
	return handle, nil
}

// Close kills the handle's process, tolerating one that has already exited,
// and waits briefly for the local port to be released so the next check can
// bind it. The release wait is best effort, not a synchronization
// guarantee. Close on an already-closed or failed handle is a no-op.
func (m *Manager) Close(handle *Handle) {
	if handle == nil || !handle.advance(StatusClosed) {
		return
	}

	terminateFn(handle.PID)
	m.registry.Unregister(handle.PID)

	retry.Poll(context.Background(), releasePollAttempts, releasePollInterval, func() bool {
		return !portBoundFn(handle.LocalPort)
	})
	logging.Debug(subsystem, "Closed tunnel to %s/%s (pid %d)", handle.Namespace, handle.Service, handle.PID)
}
