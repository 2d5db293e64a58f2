package check

import (
	"context"
	"fmt"
	"testing"
	"time"

	"smokectl/internal/config"
	"smokectl/internal/reporting"
	"smokectl/internal/tunnel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCluster struct {
	namespaces map[string]bool
	services   map[string]bool // "namespace/service"
}

func (f *fakeCluster) NamespaceExists(_ context.Context, name string) (bool, error) {
	return f.namespaces[name], nil
}

func (f *fakeCluster) ServiceExists(_ context.Context, name, namespace string) (bool, error) {
	return f.services[namespace+"/"+name], nil
}

type fakeTunnels struct {
	openErr   error
	openCalls int
	closed    []*tunnel.Handle
}

func (f *fakeTunnels) Open(_ context.Context, service, namespace string, localPort, remotePort int, _ tunnel.Options) (*tunnel.Handle, error) {
	f.openCalls++
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &tunnel.Handle{
		PID:        4000 + f.openCalls,
		LocalPort:  localPort,
		RemotePort: remotePort,
		Service:    service,
		Namespace:  namespace,
	}, nil
}

func (f *fakeTunnels) Close(handle *tunnel.Handle) {
	f.closed = append(f.closed, handle)
}

func stagingCluster() *fakeCluster {
	return &fakeCluster{
		namespaces: map[string]bool{"staging": true},
		services:   map[string]bool{"staging/svc-a": true},
	}
}

func svcACheck() config.CheckDefinition {
	return config.CheckDefinition{
		Service:    "svc-a",
		Namespace:  "staging",
		LocalPort:  8080,
		RemotePort: 80,
	}
}

func fixedBody(body string) FetchFunc {
	return func(url string, timeout time.Duration) string { return body }
}

func TestCheckReachableNamespaceAbsent(t *testing.T) {
	cluster := &fakeCluster{namespaces: map[string]bool{}}
	tunnels := &fakeTunnels{}
	o := NewOrchestrator(cluster, tunnels, fixedBody(""), nil, "")
	state := NewRunState()

	def := svcACheck()
	def.Namespace = "prod"
	result := o.CheckReachable(context.Background(), def, state)

	assert.Equal(t, KindResourceAbsent, result.Kind)
	assert.Equal(t, 1, state.Failed)
	assert.Equal(t, 0, state.Passed)
	assert.Equal(t, 0, tunnels.openCalls, "no tunnel may be spawned for an absent namespace")
}

func TestCheckReachableServiceAbsent(t *testing.T) {
	cluster := &fakeCluster{namespaces: map[string]bool{"staging": true}}
	tunnels := &fakeTunnels{}
	o := NewOrchestrator(cluster, tunnels, fixedBody(""), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindResourceAbsent, result.Kind)
	assert.Equal(t, 0, tunnels.openCalls)
}

func TestCheckReachableSuccess(t *testing.T) {
	tunnels := &fakeTunnels{}
	o := NewOrchestrator(stagingCluster(), tunnels, fixedBody("Hostname: svc-a"), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindSuccess, result.Kind)
	assert.True(t, result.OK())
	assert.Equal(t, 1, state.Passed)
	assert.Equal(t, 0, state.Failed)
	require.Len(t, tunnels.closed, 1, "tunnel must be closed after a successful probe")
}

func TestCheckReachableContentMismatchStillClosesTunnel(t *testing.T) {
	tunnels := &fakeTunnels{}
	o := NewOrchestrator(stagingCluster(), tunnels, fixedBody("Hostname: svc-b"), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindContentMismatch, result.Kind)
	assert.Equal(t, 1, state.Failed)
	require.Len(t, tunnels.closed, 1, "tunnel must be closed on content mismatch")
}

func TestCheckReachableConnectionFailureStillClosesTunnel(t *testing.T) {
	tunnels := &fakeTunnels{}
	o := NewOrchestrator(stagingCluster(), tunnels, fixedBody(""), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindConnectionFailure, result.Kind)
	require.Len(t, tunnels.closed, 1, "tunnel must be closed when the probe gets no response")
}

func TestCheckReachableTunnelTimeout(t *testing.T) {
	tunnels := &fakeTunnels{openErr: fmt.Errorf("port 8080: %w", tunnel.ErrTunnelTimeout)}
	o := NewOrchestrator(stagingCluster(), tunnels, fixedBody("Hostname: svc-a"), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindTunnelTimeout, result.Kind)
	assert.Equal(t, 1, state.Failed)
	assert.Empty(t, tunnels.closed, "a tunnel that never opened has nothing to close")
}

func TestCheckReachableSpawnFailure(t *testing.T) {
	tunnels := &fakeTunnels{openErr: fmt.Errorf("%w: kubectl not found", tunnel.ErrSpawnFailed)}
	o := NewOrchestrator(stagingCluster(), tunnels, fixedBody(""), nil, "")
	state := NewRunState()

	result := o.CheckReachable(context.Background(), svcACheck(), state)

	assert.Equal(t, KindTunnelSpawnFailure, result.Kind)
	assert.Equal(t, 1, state.Failed)
}

func TestCheckReachableDefaultExpectedSubstring(t *testing.T) {
	var probedWith string
	fetch := func(url string, timeout time.Duration) string {
		probedWith = url
		return "Hostname: svc-a\n"
	}
	o := NewOrchestrator(stagingCluster(), &fakeTunnels{}, fetch, nil, "")

	result := o.CheckReachable(context.Background(), svcACheck(), NewRunState())

	assert.Equal(t, KindSuccess, result.Kind, "default expectation is Hostname: <service>")
	assert.Equal(t, "http://localhost:8080", probedWith)
}

func TestCheckReachableExplicitExpect(t *testing.T) {
	o := NewOrchestrator(stagingCluster(), &fakeTunnels{}, fixedBody(`{"status":"ok"}`), nil, "")

	def := svcACheck()
	def.Expect = `"status":"ok"`
	result := o.CheckReachable(context.Background(), def, NewRunState())

	assert.Equal(t, KindSuccess, result.Kind)
}

func TestCheckReachableAccountingConservation(t *testing.T) {
	// Mixed outcomes: passed + failed must equal the number of invocations.
	cluster := &fakeCluster{
		namespaces: map[string]bool{"staging": true},
		services: map[string]bool{
			"staging/svc-a": true,
			"staging/svc-b": true,
		},
	}
	bodies := map[string]string{"svc-a": "Hostname: svc-a", "svc-b": "Hostname: wrong"}
	current := ""
	fetch := func(url string, timeout time.Duration) string { return bodies[current] }

	o := NewOrchestrator(cluster, &fakeTunnels{}, fetch, nil, "")
	state := NewRunState()

	for _, svc := range []string{"svc-a", "svc-b", "svc-c"} {
		current = svc
		def := svcACheck()
		def.Service = svc
		o.CheckReachable(context.Background(), def, state)
	}

	assert.Equal(t, 3, state.Total())
	assert.Equal(t, 1, state.Passed)
	assert.Equal(t, 2, state.Failed)
	assert.Equal(t, []string{"svc-b", "svc-c"}, state.FailedChecks)
}

func TestCheckReachableReportsHints(t *testing.T) {
	rec := &reporting.Recorder{}
	o := NewOrchestrator(&fakeCluster{namespaces: map[string]bool{}}, &fakeTunnels{}, fixedBody(""), rec, "")

	def := svcACheck()
	def.Hint = "run the deploy step first"
	o.CheckReachable(context.Background(), def, NewRunState())

	assert.NotEmpty(t, rec.Texts(reporting.KindFailure))
	hints := rec.Texts(reporting.KindHint)
	require.Len(t, hints, 2)
	assert.Contains(t, hints[0], "kubectl create namespace")
	assert.Equal(t, "run the deploy step first", hints[1])
}
