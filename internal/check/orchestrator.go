// Package check composes the smoke-test engine: per-check orchestration
// (existence queries, tunnel, probe, guaranteed teardown), run accounting,
// and the final summary. It talks to the cluster, the tunnel manager, and
// the probe through narrow interfaces so tests can run the whole state
// machine without a cluster.
package check

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smokectl/internal/config"
	"smokectl/internal/probe"
	"smokectl/internal/reporting"
	"smokectl/internal/tunnel"
	"smokectl/pkg/logging"
)

const subsystem = "CheckOrchestrator"

// ClusterClient answers the existence queries that gate a check.
type ClusterClient interface {
	NamespaceExists(ctx context.Context, name string) (bool, error)
	ServiceExists(ctx context.Context, name, namespace string) (bool, error)
}

// TunnelOpener owns tunnel lifecycles. Implemented by tunnel.Manager.
type TunnelOpener interface {
	Open(ctx context.Context, service, namespace string, localPort, remotePort int, opts tunnel.Options) (*tunnel.Handle, error)
	Close(handle *tunnel.Handle)
}

// FetchFunc issues one bounded GET and returns the body, or "" on any
// failure. Implemented by probe.Fetch.
type FetchFunc func(url string, timeout time.Duration) string

// Orchestrator runs reachability checks one after another, never
// interleaved. Callers must not reuse a local port across concurrent
// orchestrators; the engine does not arbitrate that.
type Orchestrator struct {
	cluster     ClusterClient
	tunnels     TunnelOpener
	fetch       FetchFunc
	sink        reporting.Sink
	kubeContext string
}

// NewOrchestrator wires an orchestrator from its collaborators. A nil fetch
// uses probe.Fetch; a nil sink discards output.
func NewOrchestrator(cluster ClusterClient, tunnels TunnelOpener, fetch FetchFunc, sink reporting.Sink, kubeContext string) *Orchestrator {
	if fetch == nil {
		fetch = probe.Fetch
	}
	if sink == nil {
		sink = reporting.NopSink{}
	}
	return &Orchestrator{
		cluster:     cluster,
		tunnels:     tunnels,
		fetch:       fetch,
		sink:        sink,
		kubeContext: kubeContext,
	}
}

// CheckReachable runs one complete reachability check for def and books the
// outcome into state. The first failing step short-circuits; once a tunnel
// has been opened it is closed on every exit path. Exactly one of
// state.Passed / state.Failed is incremented per invocation.
func (o *Orchestrator) CheckReachable(ctx context.Context, def config.CheckDefinition, state *RunState) Result {
	o.sink.Report(reporting.KindStep, fmt.Sprintf("Checking %s (%s/%s)", def.Label(), def.Namespace, def.Service))

	result := o.runCheck(ctx, def)
	state.Record(result)

	if result.OK() {
		o.sink.Report(reporting.KindSuccess, result.Message)
	} else {
		o.sink.Report(reporting.KindFailure, result.Message)
		if result.Hint != "" {
			o.sink.Report(reporting.KindHint, result.Hint)
		}
		if def.Hint != "" && def.Hint != result.Hint {
			o.sink.Report(reporting.KindHint, def.Hint)
		}
	}
	return result
}

// runCheck walks the state machine: namespace -> service -> tunnel ->
// probe. It produces exactly one Result and never records it itself.
func (o *Orchestrator) runCheck(ctx context.Context, def config.CheckDefinition) Result {
	label := def.Label()

	nsExists, err := o.cluster.NamespaceExists(ctx, def.Namespace)
	if err != nil {
		logging.Warn(subsystem, "Namespace query for %q failed: %v", def.Namespace, err)
	}
	if err != nil || !nsExists {
		return Result{
			Kind:    KindResourceAbsent,
			Label:   label,
			Message: fmt.Sprintf("%s: namespace %q not found", label, def.Namespace),
			Hint:    fmt.Sprintf("create it with: kubectl create namespace %s", def.Namespace),
		}
	}

	svcExists, err := o.cluster.ServiceExists(ctx, def.Service, def.Namespace)
	if err != nil {
		logging.Warn(subsystem, "Service query for %s/%s failed: %v", def.Namespace, def.Service, err)
	}
	if err != nil || !svcExists {
		return Result{
			Kind:    KindResourceAbsent,
			Label:   label,
			Message: fmt.Sprintf("%s: service %q not found in namespace %q", label, def.Service, def.Namespace),
			Hint:    "is the service deployed and named correctly?",
		}
	}

	opts := tunnel.Options{
		KubeContext:  o.kubeContext,
		PollInterval: time.Duration(def.PollIntervalMs) * time.Millisecond,
	}
	if def.MaxWaitAttempts > 0 {
		opts = opts.WithMaxWaitAttempts(def.MaxWaitAttempts)
	}

	handle, err := o.tunnels.Open(ctx, def.Service, def.Namespace, def.LocalPort, def.RemotePort, opts)
	if err != nil {
		switch {
		case errors.Is(err, tunnel.ErrTunnelTimeout):
			return Result{
				Kind:    KindTunnelTimeout,
				Label:   label,
				Message: fmt.Sprintf("%s: port-forward to %s/%s never became ready: %v", label, def.Namespace, def.Service, err),
				Hint:    "are the service's pods running and accepting connections?",
			}
		default:
			return Result{
				Kind:    KindTunnelSpawnFailure,
				Label:   label,
				Message: fmt.Sprintf("%s: could not start port-forward: %v", label, err),
				Hint:    "is kubectl installed and the kube context reachable?",
			}
		}
	}
	// The tunnel is open from here on; it must be closed on every exit
	// path out of the probe.
	defer o.tunnels.Close(handle)

	expected := def.Expect
	if expected == "" {
		expected = "Hostname: " + def.Service
	}

	body := o.fetch(probe.URL(def.LocalPort), time.Duration(def.TimeoutSeconds)*time.Second)
	if body == "" {
		return Result{
			Kind:    KindConnectionFailure,
			Label:   label,
			Message: fmt.Sprintf("%s: no HTTP response on http://localhost:%d", label, def.LocalPort),
			Hint:    "the tunnel is up but the service did not answer; check the container logs",
		}
	}
	if !probe.Validate(body, expected) {
		return Result{
			Kind:    KindContentMismatch,
			Label:   label,
			Message: fmt.Sprintf("%s: response did not contain %q", label, expected),
			Hint:    "is the right image deployed behind this service?",
		}
	}

	return Result{
		Kind:    KindSuccess,
		Label:   label,
		Message: fmt.Sprintf("%s is reachable and healthy", label),
	}
}
