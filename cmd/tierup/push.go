// Copyright © NGRSoftlab 2020-2025

package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/juju/errors"
	"github.com/spf13/cobra"

	tierup "github.com/ngrsoftlab/tierup"
	"github.com/ngrsoftlab/tierup/ssh"
)

func newPushCmd() *cobra.Command {
	var (
		host      string
		port      int
		user      string
		keyPath   string
		password  string
		blockSize int
		useSFTP   bool
	)

	cmd := &cobra.Command{
		Use:   "push SOURCE DEST",
		Short: "Copy a single file to a remote host in fixed-size chunks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []ssh.ConfigOption
			if keyPath != "" {
				opts = append(opts, ssh.WithPrivateKeyPathAuth(keyPath, ""))
			}
			if password != "" {
				opts = append(opts, ssh.WithPasswordAuth(password))
			}

			cfg, err := ssh.NewConfig(user, host, port, opts...)
			if err != nil {
				return errors.Trace(err)
			}
			client, err := ssh.NewClient(cfg)
			if err != nil {
				return errors.Annotate(err, "connecting")
			}
			defer client.Close()

			var remote tierup.RemoteHost
			if useSFTP {
				sftpHost := ssh.NewSFTPHost(client)
				defer sftpHost.Close()
				remote = sftpHost
			} else {
				remote = ssh.NewHost(client)
			}

			pusher := tierup.NewPusher(remote,
				tierup.WithBlockSize(blockSize),
				tierup.WithProgress(func(p tierup.Progress) {
					fmt.Printf("\r%s (%.0f%%)", p.Status, p.Percent)
				}))

			info, err := pusher.Push(cmd.Context(), &tierup.TransferRequest{
				SourcePath: args[0],
				DestPath:   args[1],
			})
			if err != nil {
				fmt.Println()
				return errors.Trace(err)
			}
			fmt.Printf("\npushed %s (%s)\n", info.Path, humanize.IBytes(uint64(info.Size)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&host, "host", "H", "", "remote host address")
	cmd.Flags().IntVarP(&port, "port", "p", 22, "remote SSH port")
	cmd.Flags().StringVarP(&user, "user", "u", "", "remote user")
	cmd.Flags().StringVarP(&keyPath, "key", "k", "", "private key file")
	cmd.Flags().StringVar(&password, "password", "", "password for password auth")
	cmd.Flags().IntVarP(&blockSize, "block-size", "b", tierup.DefaultBlockSize, "chunk size in bytes")
	cmd.Flags().BoolVar(&useSFTP, "sftp", false, "use the SFTP subsystem instead of shell commands")
	_ = cmd.MarkFlagRequired("host")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
