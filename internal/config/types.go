package config

// CheckDefinition describes one reachability check: which service to probe,
// through which local/remote port pair, and what the response body must
// contain. Name defaults to the service name; Expect defaults to
// "Hostname: <service>".
type CheckDefinition struct {
	Name       string `yaml:"name,omitempty"`
	Service    string `yaml:"service"`
	Namespace  string `yaml:"namespace"`
	LocalPort  int    `yaml:"localPort"`
	RemotePort int    `yaml:"remotePort"`
	Expect     string `yaml:"expect,omitempty"`

	// Readiness wait tuning. Zero values use the engine defaults
	// (10 attempts, 500ms apart).
	MaxWaitAttempts int `yaml:"maxWaitAttempts,omitempty"`
	PollIntervalMs  int `yaml:"pollIntervalMs,omitempty"`

	// TimeoutSeconds bounds the HTTP probe. Zero uses the default (5s).
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`

	// Hint is surfaced after a failure of this check, in addition to the
	// engine's own hints.
	Hint string `yaml:"hint,omitempty"`
}

// Label returns the identifier used for this check in output and in the
// run's failed-check list.
func (c CheckDefinition) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Service
}

// SmokectlConfig is the top-level configuration: the kube context to target
// and the suite of checks to run.
type SmokectlConfig struct {
	KubeContext string            `yaml:"kubeContext,omitempty"`
	Checks      []CheckDefinition `yaml:"checks"`
}
