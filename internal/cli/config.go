package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/cableclub/internal/config"
)

// loadConfig resolves the configuration named by --config plus the
// CABLECLUB_* environment.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	return config.Load(opts.Config)
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration after defaults, the config file and the
environment have been applied and validated.

Example:
  cableclub config --config server.yaml
  CABLECLUB_PORT=10000 cableclub config --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(rootOpts, cmd)
		},
	}
}

func runConfig(opts *RootOptions, cmd *cobra.Command) error {
	p := newPrinter(opts, cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return p.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	p.Notef("Configuration valid: %s", cfg)

	if p.JSON {
		return p.Result(cfg)
	}
	out, err := cfg.YAML()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode configuration", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}
