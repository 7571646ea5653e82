package commands

import (
	"github.com/spf13/cobra"
)

var sharesCmd = &cobra.Command{
	Use:   "shares HOST...",
	Short: "Probe the given hosts and export their share permissions",
	Long: `Shares skips replica selection and computer enumeration. Each HOST is
probed for disk shares and the access control entries found are exported
the same way as a full run.

Examples:
  shareaudit shares fs01.corp.example.org fs02.corp.example.org -f table -o -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShares,
}

func runShares(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.pipeline.ProbeHosts(cmd.Context(), args)
	return a.finish(cmd.Context(), report)
}
