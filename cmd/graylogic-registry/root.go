package main

import (
	"os"

	"github.com/spf13/cobra"
)

// configEnv names the config file when --config is not given.
const configEnv = "GRAYLOGIC_REGISTRY_CONFIG"

// options are the persistent flags shared by every command.
type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "graylogic-registry",
		Short: "Hierarchical configuration registry for Gray Logic nodes",
		Long: `graylogic-registry holds node configuration in typed schemas and
persists it to the configured storage facilities.

Paths are numeric ("1/0/0/2") or named ("app/rgbled/status/blue").

Quick start:
  graylogic-registry export                 # show every value
  graylogic-registry set app/rgbled/status/red 40
  graylogic-registry serve                  # start the HTTP API`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", os.Getenv(configEnv),
		"config file path (defaults only when empty)")

	root.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newSetCmd(opts),
		newCommitCmd(opts),
		newExportCmd(opts),
		newLoadCmd(opts),
		newSaveCmd(opts),
		newTokenCmd(opts),
		newVersionCmd(),
	)
	return root
}
