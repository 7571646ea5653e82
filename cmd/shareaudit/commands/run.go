package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"shareaudit/internal/codec"
	"shareaudit/internal/logger"
	"shareaudit/internal/recon"
	"shareaudit/internal/repository"
	"shareaudit/internal/repository/sqlite"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full audit and export the permission records",
	Long: `Run resolves a global catalog replica for every domain, enumerates its
computers, probes the hosts for disk shares and exports one record per
access control entry.

Examples:
  # Audit two child domains of corp.example.org
  shareaudit run --dns-root corp.example.org -d emea -d apac

  # Audit the forest root with paged queries, JSON to stdout
  shareaudit run --dns-root corp.example.org -d "" --paged -f json -o -`,
	Args: cobra.NoArgs,
	RunE: runAudit,
}

func runAudit(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.pipeline.Run(cmd.Context(), cfg.Targets())
	if err != nil {
		return err
	}
	return a.finish(cmd.Context(), report)
}

// finish exports the report, writes metrics and logs the run summary. Export
// runs even after an interrupt so the records gathered so far are kept.
func (a *app) finish(ctx context.Context, report *recon.Report) error {
	if err := a.export(context.WithoutCancel(ctx), report); err != nil {
		return err
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		logger.Warn("metrics not written", "path", a.cfg.MetricsFile, "error", err)
	}

	logger.Info("audit complete",
		"run_id", report.RunID,
		"domains", len(report.Domains),
		"failed_domains", len(report.FailedDomains()),
		"hosts", len(report.Hosts),
		"records", len(report.Records),
		"output", a.cfg.OutputPath,
		"format", a.cfg.OutputFormat)
	return nil
}

func (a *app) export(ctx context.Context, report *recon.Report) error {
	if a.cfg.OutputFormat == "sqlite" {
		sink, err := openSink(a.cfg.OutputPath)
		if err != nil {
			return err
		}
		defer sink.Close()
		if err := sink.SaveReport(ctx, report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
		return nil
	}

	exporter, err := codec.ForFormat(a.cfg.OutputFormat)
	if err != nil {
		return err
	}
	if err := codec.WriteFile(exporter, report.Records, a.cfg.OutputPath); err != nil {
		return fmt.Errorf("export %s: %w", exporter.Format(), err)
	}
	return nil
}

func openSink(path string) (repository.Sink, error) {
	repo, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
