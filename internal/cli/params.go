package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/streetblock/pkg/config"
)

// paramsCommand creates the params command, which prints the parameters a
// seed resolves to in the config file layout.
func (c *CLI) paramsCommand() *cobra.Command {
	var flags paramFlags

	cmd := &cobra.Command{
		Use:   "params",
		Short: "Print the parameters a seed resolves to",
		Long: `Print the generation parameters for a seed as TOML.

The output can be edited and passed back with --config to pin individual
values while keeping the rest.`,
		Example: `  streetblock params --seed 7 > city.toml
  streetblock params -c city.toml --width 1200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			seed, params, err := flags.resolve(cmd, cfg)
			if err != nil {
				return err
			}
			return config.Resolved{Seed: seed, Params: params}.Write(cmd.OutOrStdout())
		},
	}
	flags.bind(cmd)
	return cmd
}
