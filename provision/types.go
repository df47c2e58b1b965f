// Copyright © NGRSoftlab 2020-2025

package provision

import (
	"context"
)

// Provider is the cloud control-plane surface the deployer drives. The
// Azure implementation lives in provision/azure; tests substitute a fake.
type Provider interface {
	// EnsureResourceGroup creates the named group if it does not exist.
	EnsureResourceGroup(ctx context.Context, name, location string, tags map[string]string) error

	// EnsureVirtualNetwork creates the virtual network and its subnet if
	// absent, and returns the subnet's provider ID either way.
	EnsureVirtualNetwork(ctx context.Context, params NetworkParams) (subnetID string, err error)

	// CreateVirtualMachine provisions one VM attached to the given subnet
	// and blocks until the machine is running.
	CreateVirtualMachine(ctx context.Context, resourceGroup string, spec MachineSpec) (*Machine, error)
}

// NetworkParams describes the shared private network both tiers join.
type NetworkParams struct {
	ResourceGroup string
	Name          string
	Location      string
	AddressSpace  string // CIDR, e.g. 10.20.0.0/16
	SubnetName    string
	SubnetPrefix  string // CIDR inside AddressSpace
	Tags          map[string]string
}

// ImageReference selects a platform image from the provider catalog.
type ImageReference struct {
	Publisher string `yaml:"publisher"`
	Offer     string `yaml:"offer"`
	SKU       string `yaml:"sku"`
	Version   string `yaml:"version"`
}

// MachineSpec describes one VM to create.
type MachineSpec struct {
	Name         string
	Location     string
	Size         string
	AdminUser    string
	SSHPublicKey string
	SubnetID     string
	Image        ImageReference
	PublicIP     bool
	OSDiskSizeGB int32
	Tags         map[string]string
}

// Machine is a provisioned VM.
type Machine struct {
	Name      string
	PublicIP  string // empty when the machine has no public address
	PrivateIP string
}
