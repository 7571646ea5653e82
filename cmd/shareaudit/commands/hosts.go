package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shareaudit/internal/logger"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Print the merged host list of all domains",
	Long: `Hosts resolves and enumerates every domain and prints one host name per
line, in domain order. Hosts present in more than one domain are listed
once per domain.`,
	Args: cobra.NoArgs,
	RunE: runHosts,
}

func runHosts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.pipeline.Discover(cmd.Context(), cfg.Targets())
	if err != nil {
		return err
	}
	for _, d := range report.FailedDomains() {
		logger.Warn("domain contributed no hosts", "domain", d.Domain.String(), "error", d.Err)
	}

	out := cmd.OutOrStdout()
	for _, h := range report.HostNames() {
		fmt.Fprintln(out, h)
	}
	return nil
}
