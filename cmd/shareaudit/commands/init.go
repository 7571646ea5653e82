package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shareaudit/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Init writes the default configuration to $XDG_CONFIG_HOME/shareaudit/config.yaml,
or to the path given with --config.

Examples:
  shareaudit init
  shareaudit init --config ./shareaudit.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}
	if err := config.InitConfig(path, initForce); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	fmt.Fprintln(out, "Set domains and dns_root, then run: shareaudit run")
	return nil
}
