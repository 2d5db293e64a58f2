package cmd

import (
	"context"
	"fmt"
	"os"

	"smokectl/internal/check"
	"smokectl/internal/config"
	"smokectl/internal/kube"
	"smokectl/internal/procregistry"
	"smokectl/internal/reporting"
	"smokectl/internal/signalguard"
	"smokectl/internal/tunnel"
	"smokectl/pkg/logging"

	"github.com/spf13/cobra"
)

type checkFlags struct {
	configPath  string
	kubeContext string
	namespace   string
	service     string
	localPort   int
	remotePort  int
	expect      string
	timeout     int
	verbose     bool
}

func newCheckCmd() *cobra.Command {
	flags := &checkFlags{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run the configured reachability checks",
		Long: `Runs every reachability check in the smokectl configuration, or a
single ad-hoc check when --service is given. Each check verifies the
namespace and service exist, opens a port-forward tunnel, waits for the
local port under a bounded budget, probes the service over HTTP, and always
tears the tunnel down — including on Ctrl-C.

Exit code 0 means every check passed; 1 means at least one failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := logging.LevelWarn
			if flags.verbose {
				level = logging.LevelDebug
			}
			logging.InitForCLI(level, os.Stderr)

			cfg, err := resolveConfig(flags)
			if err != nil {
				return err
			}

			sink := reporting.NewConsoleSink(os.Stdout)
			code, err := runCheckSuite(cmd.Context(), cfg, sink)
			if err != nil {
				return err
			}
			if code != 0 {
				return fmt.Errorf("at least one reachability check failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "explicit config file (default: layered user and project config)")
	cmd.Flags().StringVar(&flags.kubeContext, "kube-context", "", "kubeconfig context to target")
	cmd.Flags().StringVar(&flags.namespace, "namespace", "", "namespace for an ad-hoc check")
	cmd.Flags().StringVar(&flags.service, "service", "", "service name for an ad-hoc check (skips the configured suite)")
	cmd.Flags().IntVar(&flags.localPort, "local-port", 8080, "local port for an ad-hoc check")
	cmd.Flags().IntVar(&flags.remotePort, "remote-port", 80, "remote service port for an ad-hoc check")
	cmd.Flags().StringVar(&flags.expect, "expect", "", "substring the response body must contain (default: \"Hostname: <service>\")")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "HTTP probe timeout in seconds (default 5)")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")

	return cmd
}

// resolveConfig turns the flag set into the suite to run: an ad-hoc single
// check when --service is given, the loaded configuration otherwise.
func resolveConfig(flags *checkFlags) (config.SmokectlConfig, error) {
	var cfg config.SmokectlConfig
	var err error

	switch {
	case flags.service != "":
		if flags.namespace == "" {
			return cfg, fmt.Errorf("--namespace is required with --service")
		}
		cfg.Checks = []config.CheckDefinition{{
			Service:        flags.service,
			Namespace:      flags.namespace,
			LocalPort:      flags.localPort,
			RemotePort:     flags.remotePort,
			Expect:         flags.expect,
			TimeoutSeconds: flags.timeout,
		}}
	case flags.configPath != "":
		cfg, err = config.LoadConfigFromPath(flags.configPath)
	default:
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return cfg, err
	}

	if flags.kubeContext != "" {
		cfg.KubeContext = flags.kubeContext
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if len(cfg.Checks) == 0 {
		return cfg, fmt.Errorf("no checks configured; add a .smokectl/config.yaml or pass --service")
	}
	return cfg, nil
}

// runCheckSuite executes the whole run: signal guard first, then every
// check in order, then the summary. Returns the process exit code (0 or 1).
func runCheckSuite(ctx context.Context, cfg config.SmokectlConfig, sink reporting.Sink) (int, error) {
	kubeClient, err := kube.NewClient(cfg.KubeContext)
	if err != nil {
		return 0, err
	}

	registry := procregistry.New()
	guard, err := signalguard.Install(registry)
	if err != nil {
		// No guard means no safety net; refuse to open any tunnel.
		return 0, fmt.Errorf("failed to install signal handling: %w", err)
	}
	defer guard.Release()

	orchestrator := check.NewOrchestrator(kubeClient, tunnel.NewManager(registry), nil, sink, cfg.KubeContext)
	state := check.NewRunState()

	for _, def := range cfg.Checks {
		orchestrator.CheckReachable(ctx, def, state)
	}

	aggregator := check.NewAggregator(sink, inspectFailedNamespaces(kubeClient, cfg, state))
	code, _ := aggregator.Summarize(ctx, state)
	return code, nil
}

// inspectFailedNamespaces builds the failure drill-down: a deployment
// summary for each namespace with a failed check.
func inspectFailedNamespaces(kubeClient *kube.Client, cfg config.SmokectlConfig, state *check.RunState) check.InspectFunc {
	return func(ctx context.Context) string {
		failed := make(map[string]bool, len(state.FailedChecks))
		for _, label := range state.FailedChecks {
			failed[label] = true
		}

		seen := make(map[string]bool)
		var out string
		for _, def := range cfg.Checks {
			if !failed[def.Label()] || seen[def.Namespace] {
				continue
			}
			seen[def.Namespace] = true
			if out != "" {
				out += "\n"
			}
			out += fmt.Sprintf("applications in %q:\n%s", def.Namespace, kubeClient.ListApplications(ctx, def.Namespace))
		}
		return out
	}
}
