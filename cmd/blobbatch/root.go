package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type globalOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "blobbatch",
		Short:         "Blobbatch uploads directory trees to S3-compatible storage in retrying batches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Version = version
	cmd.PersistentFlags().StringVar(&global.configPath, "config", "", "path to config file (default ./blobbatch.toml if present)")
	cmd.PersistentFlags().StringVar(&global.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPushCmd(global),
		newVersionCmd(),
	)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "blobbatch", version)
		},
	}
}
