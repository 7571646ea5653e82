// Package commands implements the shareaudit CLI.
package commands

import (
	"context"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	cfgFile string
	flags   overrides
)

// rootCmd runs the full audit when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "shareaudit",
	Short: "Audit file share permissions across Active Directory domains",
	Long: `shareaudit selects the nearest global catalog replica of each configured
domain, enumerates its computer accounts, lists the disk shares of every
host and exports the access control entries of each share.

Use "shareaudit [command] --help" for more information about a command.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAudit,
}

// Execute runs the root command with ctx. Cancelling ctx stops in-flight
// probes; records gathered so far are still exported.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $SHAREAUDIT_CONFIG, ./shareaudit.yaml or $XDG_CONFIG_HOME/shareaudit/config.yaml)")
	pf.StringArrayVarP(&flags.domains, "domain", "d", nil, "domain to audit, relative to --dns-root (repeatable)")
	pf.StringVar(&flags.dnsRoot, "dns-root", "", "DNS root suffix of the forest")
	pf.StringVarP(&flags.output, "output", "o", "", "output file path, - for stdout")
	pf.BoolVar(&flags.paged, "paged", false, "retrieve all directory results with paged queries")
	pf.IntVar(&flags.maxHosts, "max-hosts", 0, "maximum hosts probed concurrently")
	pf.StringVarP(&flags.format, "format", "f", "", "output format (csv|json|yaml|table|sqlite)")
	pf.BoolVar(&flags.sort, "sort", false, "sort records by path then principal")
	pf.StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus textfile metrics to this path")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level (DEBUG|INFO|WARN|ERROR)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(sharesCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
