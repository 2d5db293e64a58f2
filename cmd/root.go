package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "smokectl",
	Short: "Smoke-test services deployed to a Kubernetes cluster",
	Long: `smokectl verifies that services deployed to a cluster are reachable
and healthy: it checks the namespace and service exist, opens an ephemeral
port-forward tunnel, probes the service over HTTP, and tears the tunnel
down again. The process exits 0 only if every check passed.`,
	// SilenceUsage prevents the usage text from being printed on errors we
	// handle ourselves (failed checks, bad configuration).
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "smokectl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
