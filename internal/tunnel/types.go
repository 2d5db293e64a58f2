package tunnel

import "errors"

// Status describes where a tunnel is in its lifecycle. A handle's status
// only ever advances (Spawning -> Ready -> Closed, or Spawning -> Failed);
// handles are never reused.
type Status string

const (
	// StatusSpawning means the forwarding process has been started but the
	// local port is not yet confirmed bound.
	StatusSpawning Status = "Spawning"
	// StatusReady means the local port is bound and the tunnel is usable.
	StatusReady Status = "Ready"
	// StatusClosed means the tunnel was torn down by its owner.
	StatusClosed Status = "Closed"
	// StatusFailed means the tunnel never became ready and its process was
	// killed.
	StatusFailed Status = "Failed"
)

// rank orders statuses so transitions can only move forward.
func (s Status) rank() int {
	switch s {
	case StatusSpawning:
		return 0
	case StatusReady:
		return 1
	case StatusClosed, StatusFailed:
		return 2
	default:
		return -1
	}
}

// ErrTunnelTimeout is returned by Open when the local port never became
// bound within the attempt budget. The spawned process has already been
// killed when this is returned.
var ErrTunnelTimeout = errors.New("tunnel did not become ready within the attempt budget")

// ErrSpawnFailed is returned by Open when the forwarding process could not
// be started at all. No process id was registered.
var ErrSpawnFailed = errors.New("tunnel process failed to start")

// Handle identifies one live (or finished) tunnel. It is owned exclusively
// by the Manager call that created it until closed and must not be shared
// across checks.
type Handle struct {
	PID        int
	LocalPort  int
	RemotePort int
	Service    string
	Namespace  string

	status Status
}

// Status returns the handle's current lifecycle state.
func (h *Handle) Status() Status {
	return h.status
}

// advance moves the handle to next if that is a forward transition; a
// transition backwards (or to the same terminal state twice) is dropped.
func (h *Handle) advance(next Status) bool {
	if next.rank() <= h.status.rank() {
		return false
	}
	h.status = next
	return true
}
