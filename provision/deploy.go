// Copyright © NGRSoftlab 2020-2025

package provision

import (
	"context"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/retry"
	"github.com/kballard/go-shellquote"

	"github.com/ngrsoftlab/tierup"
	"github.com/ngrsoftlab/tierup/command"
)

var logger = loggo.GetLogger("tierup.provision")

const (
	// remoteStageDir is where setup scripts and assets land on each VM.
	remoteStageDir = "/tmp/tierup"

	sshWaitAttempts = 20
	sshWaitDelay    = 15 * time.Second
)

// MachineSession is the post-provisioning access to one VM: a filesystem
// surface for the pusher plus shell execution for setup scripts.
type MachineSession interface {
	Host() tierup.RemoteHost
	Run(ctx context.Context, cmd *command.Command) error
	Close() error
}

// DialFunc opens a MachineSession to addr. The default implementation
// connects over SSH with the deployment's admin credentials.
type DialFunc func(ctx context.Context, addr string) (MachineSession, error)

// DeployerOption configures a Deployer.
type DeployerOption func(*Deployer)

// WithClock substitutes the clock used for SSH wait backoff.
func WithClock(c clock.Clock) DeployerOption {
	return func(d *Deployer) {
		d.clock = c
	}
}

// WithDial substitutes how machine sessions are opened.
func WithDial(dial DialFunc) DeployerOption {
	return func(d *Deployer) {
		d.dial = dial
	}
}

// WithProgress sets the sink for file-transfer progress reports.
func WithProgress(fn tierup.ProgressFunc) DeployerOption {
	return func(d *Deployer) {
		d.progress = fn
	}
}

// Deployer runs the one-shot two-tier deployment: shared network, back-end
// database VM, front-end web VM, each finished over SSH. It keeps no state
// between runs; rerunning against existing resources is safe because every
// create is an ensure and every file push clears its destination first.
type Deployer struct {
	cfg      *Config
	provider Provider
	clock    clock.Clock
	dial     DialFunc
	progress tierup.ProgressFunc
}

// NewDeployer wires a Deployer for cfg against provider.
func NewDeployer(cfg *Config, provider Provider, opts ...DeployerOption) *Deployer {
	d := &Deployer{
		cfg:      cfg,
		provider: provider,
		clock:    clock.WallClock,
	}
	d.dial = d.dialSSH
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Result reports where the finished deployment can be reached.
type Result struct {
	Frontend *Machine
	Backend  *Machine
}

// Deploy provisions everything in order and returns the resulting machines.
// On error the resources created so far are left in place for inspection;
// rerunning continues from a clean ensure of each step.
func (d *Deployer) Deploy(ctx context.Context) (*Result, error) {
	runID := uuid.NewString()[:8]
	tags := map[string]string{
		"created-by": "tierup",
		"deployment": d.cfg.Name,
		"run":        runID,
	}
	logger.Infof("deployment %q run %s starting", d.cfg.Name, runID)

	if err := d.provider.EnsureResourceGroup(ctx, d.cfg.ResourceGroup, d.cfg.Location, tags); err != nil {
		return nil, errors.Annotatef(err, "resource group %q", d.cfg.ResourceGroup)
	}

	subnetID, err := d.provider.EnsureVirtualNetwork(ctx, NetworkParams{
		ResourceGroup: d.cfg.ResourceGroup,
		Name:          d.cfg.Network.VirtualNetwork,
		Location:      d.cfg.Location,
		AddressSpace:  d.cfg.Network.AddressSpace,
		SubnetName:    d.cfg.Network.SubnetName,
		SubnetPrefix:  d.cfg.Network.SubnetPrefix,
		Tags:          tags,
	})
	if err != nil {
		return nil, errors.Annotatef(err, "virtual network %q", d.cfg.Network.VirtualNetwork)
	}

	// Back end first: the front-end script needs its private address.
	backend, err := d.provisionTier(ctx, &d.cfg.Backend, subnetID, tags, nil)
	if err != nil {
		return nil, errors.Annotatef(err, "backend tier %q", d.cfg.Backend.Name)
	}

	frontendEnv := map[string]string{"BACKEND_HOST": backend.PrivateIP}
	frontend, err := d.provisionTier(ctx, &d.cfg.Frontend, subnetID, tags, frontendEnv)
	if err != nil {
		return nil, errors.Annotatef(err, "frontend tier %q", d.cfg.Frontend.Name)
	}

	logger.Infof("deployment %q complete: frontend %s, backend %s",
		d.cfg.Name, frontend.PublicIP, backend.PrivateIP)
	return &Result{Frontend: frontend, Backend: backend}, nil
}

// provisionTier creates one VM, waits until it accepts SSH, pushes the
// tier's assets and setup script, and runs the script with sudo.
func (d *Deployer) provisionTier(
	ctx context.Context,
	tier *TierConfig,
	subnetID string,
	tags map[string]string,
	extraEnv map[string]string,
) (*Machine, error) {
	publicKey, err := readPublicKey(d.cfg.Admin.PublicKeyPath)
	if err != nil {
		return nil, errors.Trace(err)
	}

	machine, err := d.provider.CreateVirtualMachine(ctx, d.cfg.ResourceGroup, MachineSpec{
		Name:         tier.Name,
		Location:     d.cfg.Location,
		Size:         tier.Size,
		AdminUser:    d.cfg.Admin.User,
		SSHPublicKey: publicKey,
		SubnetID:     subnetID,
		Image:        tier.Image,
		PublicIP:     tier.PublicIP,
		Tags:         tags,
	})
	if err != nil {
		return nil, errors.Annotate(err, "creating machine")
	}

	addr := machine.PublicIP
	if addr == "" {
		addr = machine.PrivateIP
	}

	sess, err := d.waitForAccess(ctx, machine.Name, addr)
	if err != nil {
		return nil, errors.Annotate(err, "waiting for machine access")
	}
	defer sess.Close()

	if err := d.pushPayload(ctx, sess, tier); err != nil {
		return nil, errors.Trace(err)
	}

	if err := d.runSetup(ctx, sess, tier, extraEnv); err != nil {
		return nil, errors.Annotate(err, "running setup script")
	}

	logger.Infof("tier %q ready on %s (private %s)", tier.Name, addr, machine.PrivateIP)
	return machine, nil
}

// waitForAccess dials the machine with backoff until SSH answers. A freshly
// created VM usually needs a minute or two before sshd is reachable.
func (d *Deployer) waitForAccess(ctx context.Context, name, addr string) (MachineSession, error) {
	var sess MachineSession
	err := retry.Call(retry.CallArgs{
		Func: func() error {
			var dialErr error
			sess, dialErr = d.dial(ctx, addr)
			return dialErr
		},
		NotifyFunc: func(err error, attempt int) {
			logger.Debugf("machine %q not reachable yet (attempt %d): %v", name, attempt, err)
		},
		Attempts: sshWaitAttempts,
		Delay:    sshWaitDelay,
		Clock:    d.clock,
		Stop:     ctx.Done(),
	})
	if err != nil {
		return nil, errors.Annotatef(err, "machine %q at %s", name, addr)
	}
	return sess, nil
}

// pushPayload transfers the tier's assets and setup script with the chunked
// pusher; each push clears its destination before writing.
func (d *Deployer) pushPayload(ctx context.Context, sess MachineSession, tier *TierConfig) error {
	pusher := tierup.NewPusher(sess.Host(),
		tierup.WithBlockSize(d.cfg.Transfer.BlockSize),
		tierup.WithProgress(d.progress),
	)

	for _, asset := range tier.Assets {
		info, err := pusher.Push(ctx, &tierup.TransferRequest{
			SourcePath: asset.Source,
			DestPath:   asset.Dest,
		})
		if err != nil {
			return errors.Annotatef(err, "pushing asset %q", asset.Source)
		}
		logger.Debugf("asset %q -> %q (%d bytes)", asset.Source, info.Path, info.Size)
	}

	scriptDest := scriptDestination(tier)
	if _, err := pusher.Push(ctx, &tierup.TransferRequest{
		SourcePath: tier.Script,
		DestPath:   scriptDest,
	}); err != nil {
		return errors.Annotatef(err, "pushing setup script %q", tier.Script)
	}
	return nil
}

// runSetup executes the pushed script under sudo with the tier's env plus
// extraEnv. Env goes through `sudo env` so it survives the privilege switch.
func (d *Deployer) runSetup(ctx context.Context, sess MachineSession, tier *TierConfig, extraEnv map[string]string) error {
	env := make(map[string]string, len(tier.Env)+len(extraEnv))
	for k, v := range tier.Env {
		env[k] = v
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	cmd := setupCommand(scriptDestination(tier), env)
	logger.Debugf("tier %q setup: %s", tier.Name, cmd.String())
	return sess.Run(ctx, cmd)
}

func scriptDestination(tier *TierConfig) string {
	return path.Join(remoteStageDir, path.Base(tier.Script))
}

// setupCommand builds `sudo env K=V ... sh <script>` with everything quoted.
func setupCommand(scriptPath string, env map[string]string) *command.Command {
	if len(env) == 0 {
		return command.New("sudo sh %s", command.WithQuotedArgs(scriptPath))
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(env))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, env[k]))
	}
	return command.New("sudo env %s sh %s",
		command.WithArgs(shellquote.Join(pairs...)),
		command.WithQuotedArgs(scriptPath),
	)
}
