package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shareaudit/internal/config"
	"shareaudit/internal/logger"
)

// overrides holds the persistent flags that replace config file values
type overrides struct {
	domains     []string
	dnsRoot     string
	output      string
	paged       bool
	maxHosts    int
	format      string
	sort        bool
	metricsFile string
	logLevel    string
}

// apply copies every flag the user set onto cfg. changed reports whether a
// flag was given on the command line.
func (o *overrides) apply(cfg *config.Config, changed func(name string) bool) {
	if changed("domain") {
		cfg.Domains = o.domains
	}
	if changed("dns-root") {
		cfg.DNSRoot = o.dnsRoot
	}
	if changed("output") {
		cfg.OutputPath = o.output
	}
	if changed("paged") {
		cfg.PagedQueries = o.paged
	}
	if changed("max-hosts") {
		cfg.MaxHostConcurrency = o.maxHosts
	}
	if changed("format") {
		cfg.OutputFormat = strings.ToLower(o.format)
	}
	if changed("sort") {
		cfg.SortOutput = o.sort
	}
	if changed("metrics-file") {
		cfg.MetricsFile = o.metricsFile
	}
	if changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
}

// loadConfig loads the config file, applies flag overrides, validates the
// result and initializes the logger. Domains are only required when
// needDomains is set.
func loadConfig(cmd *cobra.Command, needDomains bool) (*config.Config, error) {
	cfg, source, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	flags.apply(cfg, cmd.Flags().Changed)

	validate := cfg.Validate
	if !needDomains {
		validate = cfg.ValidateProbe
	}
	if err := validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	if source == "" {
		source = "defaults"
	}
	logger.Debug("configuration loaded", "source", source)
	logger.Debug(cfg.Summary())
	return cfg, nil
}
