package commands

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"shareaudit/internal/codec"
	"shareaudit/internal/recon"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Print the directory server selected for each domain",
	Long: `Resolve lists the global catalog replicas of every domain, measures their
latency and prints the one that would be queried. No computers are
enumerated and no hosts are probed.`,
	Args: cobra.NoArgs,
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.pipeline.Resolve(cmd.Context(), cfg.Targets())
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(report.Domains))
	for _, d := range report.Domains {
		rows = append(rows, resolveRow(d))
	}
	return codec.PrintTable(cmd.OutOrStdout(), []string{"domain", "search root", "server", "fallback", "elapsed", "error"}, rows)
}

func resolveRow(d recon.DomainResult) []string {
	errText := ""
	if d.Err != nil {
		errText = d.Err.Error()
	}
	return []string{
		d.Domain.String(),
		d.Domain.SearchRoot(),
		d.Server.Address,
		strconv.FormatBool(d.Server.Fallback),
		d.Duration.Round(time.Millisecond).String(),
		errText,
	}
}
