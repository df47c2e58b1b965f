// Copyright © NGRSoftlab 2020-2025

package main

import (
	"fmt"

	"github.com/juju/errors"
	"github.com/spf13/cobra"

	tierup "github.com/ngrsoftlab/tierup"
	"github.com/ngrsoftlab/tierup/provision"
	"github.com/ngrsoftlab/tierup/provision/azure"
)

func newDeployCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Provision the frontend and backend machines and run their setup scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := provision.LoadConfig(configPath)
			if err != nil {
				return errors.Annotate(err, "loading config")
			}

			provider, err := azure.NewClient(cfg.Credentials)
			if err != nil {
				return errors.Annotate(err, "initialising azure client")
			}

			deployer := provision.NewDeployer(cfg, provider,
				provision.WithProgress(func(p tierup.Progress) {
					fmt.Printf("%s: %s (%.0f%%)\n", p.Activity, p.Status, p.Percent)
				}))

			result, err := deployer.Deploy(cmd.Context())
			if err != nil {
				return errors.Trace(err)
			}

			fmt.Printf("frontend: %s\n", result.Frontend.PublicIP)
			if result.Backend.PublicIP != "" {
				fmt.Printf("backend:  %s (private %s)\n", result.Backend.PublicIP, result.Backend.PrivateIP)
			} else {
				fmt.Printf("backend:  %s\n", result.Backend.PrivateIP)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deploy.yaml", "deployment config file")
	return cmd
}
