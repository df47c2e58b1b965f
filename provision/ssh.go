// Copyright © NGRSoftlab 2020-2025

package provision

import (
	"context"
	"os"
	"strings"

	"github.com/juju/errors"

	"github.com/ngrsoftlab/tierup"
	"github.com/ngrsoftlab/tierup/command"
	"github.com/ngrsoftlab/tierup/ssh"
)

// sshSession adapts an ssh.Client to MachineSession.
type sshSession struct {
	client *ssh.Client
	host   *ssh.Host
}

func (s *sshSession) Host() tierup.RemoteHost {
	return s.host
}

func (s *sshSession) Run(ctx context.Context, cmd *command.Command) error {
	return tierup.RunNoResult(ctx, s.client, cmd)
}

func (s *sshSession) Close() error {
	return s.client.Close()
}

// dialSSH is the default DialFunc: one connection attempt with the admin
// key; retrying is the caller's job (waitForAccess).
func (d *Deployer) dialSSH(ctx context.Context, addr string) (MachineSession, error) {
	cfg, err := ssh.NewConfig(d.cfg.Admin.User, addr, d.cfg.Admin.SSHPort,
		ssh.WithPrivateKeyPathAuth(d.cfg.Admin.PrivateKeyPath, ""),
		ssh.WithRetry(0, 0),
	)
	if err != nil {
		return nil, errors.Trace(err)
	}
	client, err := ssh.NewClient(cfg)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &sshSession{client: client, host: ssh.NewHost(client)}, nil
}

// readPublicKey loads the admin public key in authorized_keys form.
func readPublicKey(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Annotate(err, "reading admin public key")
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", errors.NotValidf("empty public key %q", path)
	}
	return key, nil
}
