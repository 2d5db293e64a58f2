package check

// Kind classifies the outcome of one reachability check. Every non-success
// kind is recoverable at run level: it fails the check and the run moves on.
type Kind string

const (
	// KindResourceAbsent means the namespace or service does not exist.
	KindResourceAbsent Kind = "ResourceAbsent"
	// KindTunnelSpawnFailure means the forwarding process could not start.
	KindTunnelSpawnFailure Kind = "TunnelSpawnFailure"
	// KindTunnelTimeout means the local port never bound within the budget.
	KindTunnelTimeout Kind = "TunnelTimeout"
	// KindConnectionFailure means the tunnel was up but the probe got no
	// response body.
	KindConnectionFailure Kind = "ConnectionFailure"
	// KindContentMismatch means the probe answered but without the expected
	// content.
	KindContentMismatch Kind = "ContentMismatch"
	// KindSuccess means the service answered with the expected content.
	KindSuccess Kind = "Success"
)

// Result is the immutable outcome of one reachability check.
type Result struct {
	Kind    Kind
	Label   string
	Message string
	Hint    string
}

// OK reports whether the check passed.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}
