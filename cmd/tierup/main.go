// Copyright © NGRSoftlab 2020-2025

package main

import (
	"fmt"
	"os"

	"github.com/juju/loggo/v2"
	"github.com/spf13/cobra"
)

var version = "dev"

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "tierup",
		Short: "Provision a two-tier web/database deployment",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "tierup=INFO"
			if verbose {
				level = "tierup=DEBUG"
			}
			_ = loggo.ConfigureLoggers(level)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDeployCmd(),
		newPushCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the tierup version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Println(version)
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
